package server

import (
	"github.com/gofiber/fiber/v2"
)

// Index handles GET /
func (s *Server) Index(c *fiber.Ctx) error {
	page, err := s.feedService.Index(c.UserContext(), currentUserID(c), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "posts/index", fiber.Map{
		"Title": "Latest updates on the site",
		"Page":  page,
		"Index": true,
	})
}

// GroupPosts handles GET /group/:slug/
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	feed, err := s.feedService.Group(c.UserContext(), c.Params("slug"), currentUserID(c), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "posts/group_list", fiber.Map{
		"Title": "Posts of the group " + feed.Group.Title,
		"Group": feed.Group,
		"Page":  feed.Page,
	})
}

// Profile handles GET /profile/:username/
func (s *Server) Profile(c *fiber.Ctx) error {
	feed, err := s.feedService.Profile(c.UserContext(), c.Params("username"), currentUserID(c), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "posts/profile", fiber.Map{
		"Title":     "Profile of " + feed.Author.DisplayName(),
		"Author":    feed.Author,
		"Page":      feed.Page,
		"Following": feed.Following,
		"IsSelf":    feed.IsSelf,
		"Followers": feed.Followers,
		"Follows":   feed.Follows,
	})
}

// FollowIndex handles GET /follow/
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	page, err := s.feedService.Follow(c.UserContext(), currentUserID(c), c.Query("page"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "posts/follow", fiber.Map{
		"Title":  "Posts by authors you follow",
		"Page":   page,
		"Follow": true,
	})
}

// ProfileFollow handles GET /profile/:username/follow/
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if _, err := s.followService.Follow(c.UserContext(), currentUserID(c), username); err != nil {
		return err
	}
	return c.Redirect(profileURL(username))
}

// ProfileUnfollow handles GET /profile/:username/unfollow/
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	username := c.Params("username")
	if _, err := s.followService.Unfollow(c.UserContext(), currentUserID(c), username); err != nil {
		return err
	}
	return c.Redirect(profileURL(username))
}
