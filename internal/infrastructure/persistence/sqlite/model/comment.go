package model

type Comment struct {
	ID          int64   `gorm:"column:id;primaryKey;autoIncrement"`
	NCID        int64   `gorm:"column:nc_id;not null;index"`
	AuthorName  string  `gorm:"column:author_name;type:text;not null"`
	CommentText string  `gorm:"column:comment_text;type:text;not null"`
	CommentTag  *string `gorm:"column:comment_tag;type:text"`
	CreatedAt   string  `gorm:"column:created_at;type:text;not null"`
}

func (Comment) TableName() string {
	return "nc_comments"
}
