// models/content.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content kinds. A post may carry zero or more embedded attachments of
// the other kinds.
const (
	KindImage = "image"
	KindVideo = "video"
	KindAudio = "audio"
	KindPost  = "post"
)

// ValidKind reports whether kind is one of the recognized content kinds.
func ValidKind(kind string) bool {
	switch kind {
	case KindImage, KindVideo, KindAudio, KindPost:
		return true
	}
	return false
}

// ContentItem is the unified record for every piece of published content:
// single-media uploads (image/video/audio) and text posts with optional
// attachments. The Kind field discriminates which derived attributes are
// meaningful.
type ContentItem struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID     primitive.ObjectID `json:"ownerId" bson:"ownerId"`
	Kind        string             `json:"kind" bson:"kind"`
	Title       string             `json:"title,omitempty" bson:"title,omitempty"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`

	// Paths into the managed uploads tree. Every non-empty path must
	// resolve to an existing file for as long as the record exists.
	MediaPath    string `json:"mediaPath,omitempty" bson:"mediaPath,omitempty"`
	CoverPath    string `json:"coverPath,omitempty" bson:"coverPath,omitempty"`
	WaveformPath string `json:"waveformPath,omitempty" bson:"waveformPath,omitempty"`

	// Derived attributes, kind-dependent.
	DurationSeconds float64 `json:"durationSeconds,omitempty" bson:"durationSeconds,omitempty"` // audio/video
	Width           int     `json:"width,omitempty" bson:"width,omitempty"`                     // image
	Height          int     `json:"height,omitempty" bson:"height,omitempty"`                   // image
	Genre           string  `json:"genre,omitempty" bson:"genre,omitempty"`                     // audio

	Attachments []Attachment `json:"attachments,omitempty" bson:"attachments,omitempty"` // post

	Tags     []string             `json:"tags,omitempty" bson:"tags,omitempty"`
	IsPublic bool                 `json:"isPublic" bson:"isPublic"`
	Likes    []primitive.ObjectID `json:"likes,omitempty" bson:"likes,omitempty"`
	Comments []Comment            `json:"comments,omitempty" bson:"comments,omitempty"`
	Plays    int64                `json:"plays" bson:"plays"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Attachment is a media file embedded in a post.
type Attachment struct {
	Path            string  `json:"path" bson:"path"`
	Kind            string  `json:"kind" bson:"kind"`
	Width           int     `json:"width,omitempty" bson:"width,omitempty"`
	Height          int     `json:"height,omitempty" bson:"height,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty" bson:"durationSeconds,omitempty"`
}

// Comment on a content item. Timestamp is seconds into the media and is
// only meaningful for audio/video; it defaults to 0.
type Comment struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID  primitive.ObjectID `json:"authorId" bson:"authorId"`
	Text      string             `json:"text" bson:"text"`
	Timestamp float64            `json:"timestamp,omitempty" bson:"timestamp,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// MediaPaths returns every non-empty file path referenced by the item,
// including post attachments. Used by the delete/cleanup paths.
func (ci *ContentItem) MediaPaths() []string {
	var paths []string
	for _, p := range []string{ci.MediaPath, ci.CoverPath, ci.WaveformPath} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	for _, a := range ci.Attachments {
		if a.Path != "" {
			paths = append(paths, a.Path)
		}
	}
	return paths
}

// IsLikedBy reports whether userID is present in the like set.
func (ci *ContentItem) IsLikedBy(userID primitive.ObjectID) bool {
	for _, id := range ci.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// CanRead decides visibility: public items are readable by anyone,
// private items only by their owner.
func CanRead(item *ContentItem, callerID primitive.ObjectID) bool {
	return item.IsPublic || callerID == item.OwnerID
}

// CanMutate decides whether callerID may modify or delete the item.
func CanMutate(item *ContentItem, callerID primitive.ObjectID) bool {
	return callerID == item.OwnerID
}

// ContentResponse model for single content item responses
type ContentResponse struct {
	Status  int          `json:"status"`
	Message string       `json:"message"`
	Data    *ContentItem `json:"data,omitempty"`
}

// ContentListResponse model for paginated content listings
type ContentListResponse struct {
	Status  int           `json:"status"`
	Message string        `json:"message"`
	Data    []ContentItem `json:"data,omitempty"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
	Total   int64         `json:"total"`
}
