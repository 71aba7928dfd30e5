package cache

import (
	"fmt"
	"time"
)

const (
	indexVersionKey    = "feed:index:version"
	indexPageKeyFormat = "feed:index:v%d:page:%d"
	blacklistKeyFormat = "blacklist:%s"
)

const (
	// IndexPageTTL is the default lifetime of a cached index page.
	IndexPageTTL = 20 * time.Second
)

// IndexPageKey is the key of index page n under cache generation version.
func IndexPageKey(version int64, page int) string {
	return fmt.Sprintf(indexPageKeyFormat, version, page)
}

// BlacklistKey is the key marking a revoked session token id.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(blacklistKeyFormat, jti)
}
