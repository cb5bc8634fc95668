package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestValidKind(t *testing.T) {
	for _, kind := range []string{KindImage, KindVideo, KindAudio, KindPost} {
		if !ValidKind(kind) {
			t.Errorf("ValidKind(%q) = false", kind)
		}
	}
	for _, kind := range []string{"", "track", "IMAGE", "document"} {
		if ValidKind(kind) {
			t.Errorf("ValidKind(%q) = true", kind)
		}
	}
}

func TestCanReadAndCanMutate(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	public := &ContentItem{OwnerID: owner, IsPublic: true}
	private := &ContentItem{OwnerID: owner, IsPublic: false}

	if !CanRead(public, primitive.NilObjectID) || !CanRead(public, stranger) {
		t.Error("public items must be readable by anyone")
	}
	if !CanRead(private, owner) {
		t.Error("owners must read their own private items")
	}
	if CanRead(private, stranger) || CanRead(private, primitive.NilObjectID) {
		t.Error("private items must be hidden from non-owners")
	}

	if !CanMutate(public, owner) {
		t.Error("owners must be able to mutate")
	}
	if CanMutate(public, stranger) || CanMutate(public, primitive.NilObjectID) {
		t.Error("only the owner may mutate, even for public items")
	}
}

func TestMediaPaths(t *testing.T) {
	item := &ContentItem{
		MediaPath:    "uploads/tracks/a.mp3",
		WaveformPath: "uploads/waveforms/a.json",
		Attachments: []Attachment{
			{Path: "uploads/posts/b.png"},
			{Path: ""},
		},
	}

	paths := item.MediaPaths()
	if len(paths) != 3 {
		t.Fatalf("paths = %v, want 3 entries", paths)
	}
	for _, p := range paths {
		if p == "" {
			t.Error("MediaPaths must skip empty paths")
		}
	}

	if got := (&ContentItem{}).MediaPaths(); len(got) != 0 {
		t.Errorf("empty item paths = %v, want none", got)
	}
}

func TestIsLikedBy(t *testing.T) {
	fan := primitive.NewObjectID()
	item := &ContentItem{Likes: []primitive.ObjectID{primitive.NewObjectID(), fan}}

	if !item.IsLikedBy(fan) {
		t.Error("fan should be in the like set")
	}
	if item.IsLikedBy(primitive.NewObjectID()) {
		t.Error("unknown user should not be in the like set")
	}
}
