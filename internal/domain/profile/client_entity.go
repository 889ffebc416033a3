package profile

import "time"

// Client is the 1:1 extension of a client user.
type Client struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	Phone     string    `gorm:"column:phone;size:32" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) AttachUser(userID int64) {
	c.UserID = userID
}
