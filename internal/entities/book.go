package entities

import (
	"time"
)

// User is a login identity. Usernames are unique and there is no password.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Books     []Book    `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Book is a single reading-log entry. Rows are never physically removed;
// Deleted hides them from every read path.
type Book struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"size:512" json:"title"`
	Author     string     `gorm:"size:256" json:"author"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	FinishDate *time.Time `json:"finish_date,omitempty"`
	Deleted    bool       `gorm:"index;not null;default:false" json:"deleted"`
	UserID     *uint      `gorm:"index" json:"user_id,omitempty"`
	User       *User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HasFinished reports whether both reading stamps are present.
func (b *Book) HasFinished() bool {
	return b.StartDate != nil && b.FinishDate != nil
}

// ReadingTime returns finish-start for finished books, now-start for books
// in progress and zero for books that were never started.
func (b *Book) ReadingTime(now time.Time) time.Duration {
	if b.StartDate == nil {
		return 0
	}
	end := now
	if b.FinishDate != nil {
		end = *b.FinishDate
	}
	d := end.Sub(*b.StartDate)
	if d < 0 {
		return 0
	}
	return d
}

// ElapsedSeconds is ReadingTime truncated to whole seconds.
func (b *Book) ElapsedSeconds(now time.Time) int64 {
	return int64(b.ReadingTime(now) / time.Second)
}
