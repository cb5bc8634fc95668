// services/content_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kanya01/freqspace-backend/config"
	"github.com/kanya01/freqspace-backend/models"
	"github.com/kanya01/freqspace-backend/utils"
)

// ContentRepository is the persistence contract for content records.
type ContentRepository interface {
	Insert(ctx context.Context, item *models.ContentItem) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.ContentItem, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, filter ContentFilter, page, limit int) ([]models.ContentItem, int64, error)
	SetLike(ctx context.Context, contentID, userID primitive.ObjectID, liked bool) error
	PushComment(ctx context.Context, contentID primitive.ObjectID, comment models.Comment) error
	PullComment(ctx context.Context, contentID, commentID primitive.ObjectID) error
	IncrementPlays(ctx context.Context, id primitive.ObjectID) error
}

// Storage is the durable file backend the lifecycle manager writes through.
type Storage interface {
	Save(subDir, originalName string, data []byte) (string, error)
	Delete(path string) error
	Exists(path string) bool
	CleanupFiles(paths ...string)
}

// MediaProber extracts derived attributes from stored media files.
type MediaProber interface {
	ImageDimensions(path string) (int, int, error)
	Duration(path string) (float64, error)
	Waveform(path string, points int) ([]float64, error)
	VideoThumbnail(path string) ([]byte, error)
}

// Notifier pushes interaction events to connected content owners. May be
// nil, in which case events are dropped.
type Notifier interface {
	NotifyInteraction(ownerID primitive.ObjectID, event InteractionEvent)
}

// Interaction event types.
const (
	InteractionLike    = "like"
	InteractionComment = "comment"
)

// InteractionEvent describes a like or comment on a content item.
type InteractionEvent struct {
	Type      string             `json:"type"`
	ContentID primitive.ObjectID `json:"contentId"`
	ActorID   primitive.ObjectID `json:"actorId"`
}

// ContentFilter narrows a content listing.
type ContentFilter struct {
	Kind     string
	Tag      string
	Query    string
	OwnerID  *primitive.ObjectID
	CallerID primitive.ObjectID // NilObjectID for anonymous callers
}

// UploadedFile is one file from a multipart request, tagged by its form
// field name.
type UploadedFile struct {
	FieldName string
	Filename  string
	MIMEType  string
	Size      int64
	Data      []byte
}

// CreateContentInput carries everything needed to publish a content item.
type CreateContentInput struct {
	Kind        string
	Title       string
	Description string
	Genre       string
	TagsRaw     string
	IsPublicRaw string
	Media       *UploadedFile
	Cover       *UploadedFile
	Attachments []UploadedFile // posts only
}

// UpdateContentInput carries a metadata edit. Nil fields are left
// untouched. Media replacement is unsupported: delete and re-upload.
type UpdateContentInput struct {
	Title       *string
	Description *string
	Genre       *string
	TagsRaw     *string
	IsPublicRaw *string
	NewCover    *UploadedFile
}

// ContentService orchestrates the content lifecycle: intake filtering,
// metadata extraction, record persistence and the cleanup invariant that
// filesystem state tracks database state. It also carries the social
// interaction ledger (likes, comments).
type ContentService struct {
	repo     ContentRepository
	storage  Storage
	prober   MediaProber
	cfg      *config.UploadConfig
	notifier Notifier
}

// NewContentService wires the lifecycle manager. notifier may be nil.
func NewContentService(repo ContentRepository, storage Storage, prober MediaProber, cfg *config.UploadConfig, notifier Notifier) *ContentService {
	return &ContentService{
		repo:     repo,
		storage:  storage,
		prober:   prober,
		cfg:      cfg,
		notifier: notifier,
	}
}

// Create validates and persists a new content item. On any failure after a
// file write, every file written so far is removed before the error is
// returned: a rejected upload leaves zero residue.
func (s *ContentService) Create(ctx context.Context, ownerID primitive.ObjectID, in CreateContentInput) (*models.ContentItem, error) {
	if !models.ValidKind(in.Kind) {
		return nil, utils.NewBadRequest(fmt.Sprintf("Unknown content kind %q", in.Kind))
	}

	if in.Kind == models.KindPost {
		if strings.TrimSpace(in.Description) == "" {
			return nil, utils.NewBadRequest("Post content text is required")
		}
	} else {
		if strings.TrimSpace(in.Title) == "" {
			return nil, utils.NewBadRequest("Title is required")
		}
		if in.Media == nil {
			return nil, utils.ErrMissingMedia("A media file is required")
		}
	}

	now := time.Now()
	item := &models.ContentItem{
		ID:          primitive.NewObjectID(),
		OwnerID:     ownerID,
		Kind:        in.Kind,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Genre:       strings.TrimSpace(in.Genre),
		Tags:        utils.ParseTags(in.TagsRaw),
		IsPublic:    utils.ParseBoolDefault(in.IsPublicRaw, true),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Every path written from here on is collected so a failure on any
	// later step can undo the lot in one place.
	var written []string
	fail := func(err error) (*models.ContentItem, error) {
		s.storage.CleanupFiles(written...)
		return nil, err
	}

	if in.Media != nil {
		path, err := s.acceptFile(*in.Media, in.Kind)
		if err != nil {
			return fail(err)
		}
		written = append(written, path)
		item.MediaPath = path

		if err := s.extractMetadata(item, path); err != nil {
			return fail(err)
		}
		if item.Kind == models.KindAudio {
			item.WaveformPath = s.synthesizeWaveform(path)
			if item.WaveformPath != "" {
				written = append(written, item.WaveformPath)
			}
		}
		if item.Kind == models.KindVideo && in.Cover == nil {
			item.CoverPath = s.generateThumbnail(path)
			if item.CoverPath != "" {
				written = append(written, item.CoverPath)
			}
		}
	}

	if in.Cover != nil {
		path, err := s.acceptFile(*in.Cover, models.KindImage)
		if err != nil {
			return fail(err)
		}
		written = append(written, path)
		item.CoverPath = path
	}

	if in.Kind == models.KindPost {
		for _, att := range in.Attachments {
			attachment, err := s.acceptAttachment(att)
			if err != nil {
				return fail(err)
			}
			written = append(written, attachment.Path)
			item.Attachments = append(item.Attachments, attachment)
		}
	}

	if err := s.repo.Insert(ctx, item); err != nil {
		return fail(utils.NewInternal(err))
	}
	return item, nil
}

// Update applies a metadata edit by the owner. A supplied cover replaces
// the old one; the previous cover file is removed best-effort once the
// record points at the new file.
func (s *ContentService) Update(ctx context.Context, id, callerID primitive.ObjectID, in UpdateContentInput) (*models.ContentItem, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanMutate(item, callerID) {
		return nil, utils.NewForbidden("Only the owner can modify this content")
	}

	fields := map[string]interface{}{"updatedAt": time.Now()}
	if in.Title != nil {
		if item.Kind != models.KindPost && strings.TrimSpace(*in.Title) == "" {
			return nil, utils.NewBadRequest("Title cannot be empty")
		}
		fields["title"] = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		if item.Kind == models.KindPost && strings.TrimSpace(*in.Description) == "" {
			return nil, utils.NewBadRequest("Post content text cannot be empty")
		}
		fields["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Genre != nil {
		fields["genre"] = strings.TrimSpace(*in.Genre)
	}
	if in.TagsRaw != nil {
		fields["tags"] = utils.ParseTags(*in.TagsRaw)
	}
	if in.IsPublicRaw != nil {
		fields["isPublic"] = utils.ParseBoolDefault(*in.IsPublicRaw, item.IsPublic)
	}

	oldCover := ""
	if in.NewCover != nil {
		path, err := s.acceptFile(*in.NewCover, models.KindImage)
		if err != nil {
			return nil, err
		}
		fields["coverPath"] = path
		oldCover = item.CoverPath
		defer func() {
			// The record now points at the new cover (or the new file was
			// already cleaned up on failure); the old file is garbage.
			if oldCover != "" {
				s.storage.CleanupFiles(oldCover)
			}
		}()
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		if in.NewCover != nil {
			s.storage.CleanupFiles(fields["coverPath"].(string))
			oldCover = "" // keep the still-referenced old cover
		}
		return nil, utils.NewInternal(err)
	}

	return s.findItem(ctx, id)
}

// Delete removes the record and reclaims its files. The record removal is
// unconditional: file deletion failures are logged as storage
// inconsistencies, never surfaced, because an orphaned file is recoverable
// garbage while an orphaned record is a correctness bug.
func (s *ContentService) Delete(ctx context.Context, id, callerID primitive.ObjectID) error {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return err
	}
	if !models.CanMutate(item, callerID) {
		return utils.NewForbidden("Only the owner can delete this content")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return utils.NewInternal(err)
	}
	s.storage.CleanupFiles(item.MediaPaths()...)
	return nil
}

// GetByID returns a single item after the visibility gate. When countPlay
// is set, the qualifying read bumps the play counter (best-effort; the
// caller decides qualification, e.g. via the Redis view guard).
func (s *ContentService) GetByID(ctx context.Context, id, callerID primitive.ObjectID, countPlay bool) (*models.ContentItem, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !models.CanRead(item, callerID) {
		return nil, utils.NewForbidden("This content is private")
	}

	if countPlay {
		if err := s.repo.IncrementPlays(ctx, id); err != nil {
			log.Printf("failed to increment plays for %s: %v", id.Hex(), err)
		} else {
			item.Plays++
		}
	}
	return item, nil
}

// List returns a page of items newest-first. Visibility: requesting your
// own items shows everything; anything else is restricted to public items,
// with the unfiltered browse returning the union of your own items and
// everyone's public ones.
func (s *ContentService) List(ctx context.Context, filter ContentFilter, page, limit int) ([]models.ContentItem, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, utils.NewInternal(err)
	}
	return items, total, nil
}

// ToggleLike flips userID's membership in the like set: present removes,
// absent adds. Two identical calls are a net no-op by design.
func (s *ContentService) ToggleLike(ctx context.Context, contentID, userID primitive.ObjectID) (bool, error) {
	item, err := s.findItem(ctx, contentID)
	if err != nil {
		return false, err
	}
	if !models.CanRead(item, userID) {
		return false, utils.NewForbidden("This content is private")
	}

	liked := !item.IsLikedBy(userID)
	if err := s.repo.SetLike(ctx, contentID, userID, liked); err != nil {
		return false, utils.NewInternal(err)
	}

	if liked && s.notifier != nil && item.OwnerID != userID {
		s.notifier.NotifyInteraction(item.OwnerID, InteractionEvent{
			Type:      InteractionLike,
			ContentID: contentID,
			ActorID:   userID,
		})
	}
	return liked, nil
}

// AddComment inserts a comment at the head of the list (newest-first).
// timestamp is seconds into the media; 0 for non-media comments.
func (s *ContentService) AddComment(ctx context.Context, contentID, authorID primitive.ObjectID, text string, timestamp float64) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, utils.NewBadRequest("Comment text is required")
	}
	if timestamp < 0 {
		timestamp = 0
	}

	item, err := s.findItem(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if !models.CanRead(item, authorID) {
		return nil, utils.NewForbidden("This content is private")
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		AuthorID:  authorID,
		Text:      strings.TrimSpace(text),
		Timestamp: timestamp,
		CreatedAt: time.Now(),
	}
	if err := s.repo.PushComment(ctx, contentID, comment); err != nil {
		return nil, utils.NewInternal(err)
	}

	if s.notifier != nil && item.OwnerID != authorID {
		s.notifier.NotifyInteraction(item.OwnerID, InteractionEvent{
			Type:      InteractionComment,
			ContentID: contentID,
			ActorID:   authorID,
		})
	}
	return &comment, nil
}

// DeleteComment removes exactly one comment. Allowed for the comment's
// author and the content's owner.
func (s *ContentService) DeleteComment(ctx context.Context, contentID, commentID, callerID primitive.ObjectID) error {
	item, err := s.findItem(ctx, contentID)
	if err != nil {
		return err
	}

	var comment *models.Comment
	for i := range item.Comments {
		if item.Comments[i].ID == commentID {
			comment = &item.Comments[i]
			break
		}
	}
	if comment == nil {
		return utils.NewNotFound("Comment not found")
	}
	if callerID != comment.AuthorID && callerID != item.OwnerID {
		return utils.NewForbidden("Only the comment author or content owner can delete a comment")
	}

	if err := s.repo.PullComment(ctx, contentID, commentID); err != nil {
		return utils.NewInternal(err)
	}
	return nil
}

// findItem loads an item, translating repository misses into NotFound.
func (s *ContentService) findItem(ctx context.Context, id primitive.ObjectID) (*models.ContentItem, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if appErr, ok := utils.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, utils.NewInternal(err)
	}
	if item == nil {
		return nil, utils.NewNotFound("Content not found")
	}
	return item, nil
}

// acceptFile runs the intake filter for one file and stores it. kind
// routes the destination directory and is cross-checked against the
// declared MIME type for single-media kinds.
func (s *ContentService) acceptFile(file UploadedFile, kind string) (string, error) {
	policy, ok := s.cfg.PolicyFor(file.FieldName)
	if !ok {
		return "", utils.NewBadRequest(fmt.Sprintf("Unknown upload field %q", file.FieldName))
	}
	if err := utils.CheckUpload(policy, file.MIMEType, file.Size); err != nil {
		return "", err
	}
	if kind != models.KindPost {
		if got := utils.KindFromMIME(file.MIMEType); got != kind {
			return "", utils.ErrInvalidMediaType(fmt.Sprintf(
				"Declared kind %q does not match file type %q", kind, file.MIMEType))
		}
	}
	path, err := s.storage.Save(s.cfg.DirFor(file.FieldName, kind), file.Filename, file.Data)
	if err != nil {
		return "", utils.NewInternal(err)
	}
	return path, nil
}

// acceptAttachment stores one post attachment and derives its metadata.
// Video attachments are held to the same duration ceiling as video posts.
func (s *ContentService) acceptAttachment(file UploadedFile) (models.Attachment, error) {
	kind := utils.KindFromMIME(file.MIMEType)
	if kind == "" {
		return models.Attachment{}, utils.ErrInvalidMediaType(
			fmt.Sprintf("File type %q is not a supported attachment", file.MIMEType))
	}

	policy, ok := s.cfg.PolicyFor(file.FieldName)
	if !ok {
		return models.Attachment{}, utils.NewBadRequest(fmt.Sprintf("Unknown upload field %q", file.FieldName))
	}
	if err := utils.CheckUpload(policy, file.MIMEType, file.Size); err != nil {
		return models.Attachment{}, err
	}

	path, err := s.storage.Save(policy.Dir, file.Filename, file.Data)
	if err != nil {
		return models.Attachment{}, utils.NewInternal(err)
	}

	attachment := models.Attachment{Path: path, Kind: kind}
	switch kind {
	case models.KindImage:
		if w, h, err := s.prober.ImageDimensions(path); err == nil {
			attachment.Width, attachment.Height = w, h
		}
	case models.KindVideo:
		duration, err := s.gateVideoDuration(path)
		if err != nil {
			s.storage.CleanupFiles(path)
			return models.Attachment{}, err
		}
		attachment.DurationSeconds = duration
	case models.KindAudio:
		if d, err := s.prober.Duration(path); err == nil {
			attachment.DurationSeconds = d
		}
	}
	return attachment, nil
}

// extractMetadata fills in kind-specific derived attributes for the
// primary media file. Only the video duration gate can fail the upload;
// image dimensions and audio duration are cosmetic.
func (s *ContentService) extractMetadata(item *models.ContentItem, path string) error {
	switch item.Kind {
	case models.KindImage:
		w, h, err := s.prober.ImageDimensions(path)
		if err != nil {
			log.Printf("image probe failed for %s: %v", path, err)
			return nil
		}
		item.Width, item.Height = w, h
	case models.KindVideo:
		duration, err := s.gateVideoDuration(path)
		if err != nil {
			return err
		}
		item.DurationSeconds = duration
	case models.KindAudio:
		duration, err := s.prober.Duration(path)
		if err != nil {
			log.Printf("audio probe failed for %s: %v", path, err)
			return nil
		}
		item.DurationSeconds = duration
	}
	return nil
}

// gateVideoDuration probes a video and enforces the duration ceiling. A
// failed or timed-out probe means "duration unknown": the video is
// rejected rather than silently accepted.
func (s *ContentService) gateVideoDuration(path string) (float64, error) {
	duration, err := s.prober.Duration(path)
	if err != nil {
		if appErr, ok := utils.AsAppError(err); ok {
			return 0, appErr
		}
		return 0, utils.ErrUnreadableMedia("Could not determine video duration").WithInternal(err)
	}
	if duration > s.cfg.MaxVideoSeconds {
		return 0, utils.ErrMediaTooLong(fmt.Sprintf(
			"Video is %.0f seconds; the maximum is %.0f", duration, s.cfg.MaxVideoSeconds))
	}
	return duration, nil
}

// synthesizeWaveform produces the amplitude envelope artifact for an audio
// upload. The waveform is a derived cache: failure leaves the path empty
// and the upload proceeds.
func (s *ContentService) synthesizeWaveform(mediaPath string) string {
	envelope, err := s.prober.Waveform(mediaPath, s.cfg.WaveformPoints)
	if err != nil {
		log.Printf("waveform synthesis failed for %s: %v", mediaPath, err)
		return ""
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		log.Printf("waveform encoding failed for %s: %v", mediaPath, err)
		return ""
	}
	path, err := s.storage.Save(config.WaveformDir, "waveform.json", data)
	if err != nil {
		log.Printf("waveform write failed for %s: %v", mediaPath, err)
		return ""
	}
	return path
}

// generateThumbnail grabs a poster frame for a video upload. Best-effort.
func (s *ContentService) generateThumbnail(videoPath string) string {
	data, err := s.prober.VideoThumbnail(videoPath)
	if err != nil {
		log.Printf("thumbnail generation failed for %s: %v", videoPath, err)
		return ""
	}
	path, err := s.storage.Save(config.ThumbnailDir, "thumbnail.jpg", data)
	if err != nil {
		log.Printf("thumbnail write failed for %s: %v", videoPath, err)
		return ""
	}
	return path
}
