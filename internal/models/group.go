package models

// Group is a themed community posts can optionally belong to.
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Slug        string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
}

// TableName specifies the table name for GORM
func (Group) TableName() string {
	return "groups"
}
