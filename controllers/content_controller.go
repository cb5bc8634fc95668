// controllers/content_controller.go
package controllers

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kanya01/freqspace-backend/config"
	"github.com/kanya01/freqspace-backend/middleware"
	"github.com/kanya01/freqspace-backend/models"
	"github.com/kanya01/freqspace-backend/services"
	"github.com/kanya01/freqspace-backend/utils"
)

// Multipart parse ceiling; per-field ceilings are enforced by the intake
// filter afterwards.
const maxMultipartMemory = 128 << 20

type ContentController struct {
	service *services.ContentService
}

func NewContentController(service *services.ContentService) *ContentController {
	return &ContentController{service: service}
}

// CreateContent handles POST /api/content: multipart upload of a new
// image/video/audio item or a post with attachments.
func (cc *ContentController) CreateContent(c echo.Context) error {
	claims := middleware.GetUserFromToken(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized",
		})
	}
	ownerID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid user ID in token",
		})
	}

	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to parse form data",
		})
	}

	input := services.CreateContentInput{
		Kind:        c.FormValue("kind"),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Genre:       c.FormValue("genre"),
		TagsRaw:     c.FormValue("tags"),
		IsPublicRaw: c.FormValue("isPublic"),
	}

	// The primary media arrives either on the generic "media" field or,
	// for audio, optionally on the dedicated "track" field.
	for _, field := range []string{"media", "track"} {
		file, err := readFormFile(c, field)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to read uploaded file",
			})
		}
		if file != nil {
			input.Media = file
			break
		}
	}

	cover, err := readFormFile(c, "coverImage")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}
	input.Cover = cover

	if input.Kind == models.KindPost {
		attachments, err := readFormFiles(c, "attachment")
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.Response{
				Status:  http.StatusInternalServerError,
				Message: "Failed to read uploaded file",
			})
		}
		input.Attachments = attachments
	}

	// Uploads include probe work; give them a generous deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	item, err := cc.service.Create(ctx, ownerID, input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, models.ContentResponse{
		Status:  http.StatusCreated,
		Message: "Content created successfully",
		Data:    item,
	})
}

// UpdateContent handles PUT /api/content/:id: metadata edits plus optional
// cover replacement by the owner.
func (cc *ContentController) UpdateContent(c echo.Context) error {
	contentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid content ID",
		})
	}
	callerID := middleware.CallerID(c)

	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Failed to parse form data",
		})
	}

	var input services.UpdateContentInput
	form := c.Request().MultipartForm
	if form != nil {
		input.Title = optionalFormValue(form, "title")
		input.Description = optionalFormValue(form, "description")
		input.Genre = optionalFormValue(form, "genre")
		input.TagsRaw = optionalFormValue(form, "tags")
		input.IsPublicRaw = optionalFormValue(form, "isPublic")
	}

	cover, err := readFormFile(c, "coverImage")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to read uploaded file",
		})
	}
	input.NewCover = cover

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	item, err := cc.service.Update(ctx, contentID, callerID, input)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.ContentResponse{
		Status:  http.StatusOK,
		Message: "Content updated successfully",
		Data:    item,
	})
}

// DeleteContent handles DELETE /api/content/:id.
func (cc *ContentController) DeleteContent(c echo.Context) error {
	contentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid content ID",
		})
	}
	callerID := middleware.CallerID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := cc.service.Delete(ctx, contentID, callerID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Content deleted successfully",
	})
}

// GetContent handles GET /api/content/:id. Works for anonymous callers on
// public items; plays are counted once per caller per hour when Redis is
// available.
func (cc *ContentController) GetContent(c echo.Context) error {
	contentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid content ID",
		})
	}
	callerID := middleware.CallerID(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	countPlay := cc.shouldCountPlay(ctx, c, contentID, callerID)

	item, err := cc.service.GetByID(ctx, contentID, callerID, countPlay)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.ContentResponse{
		Status:  http.StatusOK,
		Message: "Content retrieved successfully",
		Data:    item,
	})
}

// ListContent handles GET /api/content with optional kind/tag/q/ownerId
// filters and pagination.
func (cc *ContentController) ListContent(c echo.Context) error {
	callerID := middleware.CallerID(c)

	filter := services.ContentFilter{
		Kind:     c.QueryParam("kind"),
		Tag:      c.QueryParam("tag"),
		Query:    c.QueryParam("q"),
		CallerID: callerID,
	}
	if ownerParam := c.QueryParam("ownerId"); ownerParam != "" {
		ownerID, err := primitive.ObjectIDFromHex(ownerParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.Response{
				Status:  http.StatusBadRequest,
				Message: "Invalid owner ID",
			})
		}
		filter.OwnerID = &ownerID
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	items, total, err := cc.service.List(ctx, filter, page, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, models.ContentListResponse{
		Status:  http.StatusOK,
		Message: "Content retrieved successfully",
		Data:    items,
		Page:    page,
		Limit:   limit,
		Total:   total,
	})
}

// shouldCountPlay deduplicates play counting per (item, caller) per hour
// via Redis SetNX. Anonymous callers fall back to their IP; without Redis
// every read counts.
func (cc *ContentController) shouldCountPlay(ctx context.Context, c echo.Context, contentID, callerID primitive.ObjectID) bool {
	client := config.GetRedisClient()
	if client == nil {
		return true
	}

	who := callerID.Hex()
	if callerID == primitive.NilObjectID {
		who = c.RealIP()
	}
	key := fmt.Sprintf("play:%s:%s", contentID.Hex(), who)

	ok, err := client.SetNX(ctx, key, 1, time.Hour).Result()
	if err != nil {
		log.Printf("play dedup check failed: %v", err)
		return true
	}
	return ok
}

// readFormFile reads a single optional multipart file into memory. A
// missing field returns (nil, nil).
func readFormFile(c echo.Context, field string) (*services.UploadedFile, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return loadFileHeader(header, field)
}

// readFormFiles reads every file submitted under a repeated field name.
func readFormFiles(c echo.Context, field string) ([]services.UploadedFile, error) {
	form := c.Request().MultipartForm
	if form == nil {
		return nil, nil
	}
	var files []services.UploadedFile
	for _, header := range form.File[field] {
		file, err := loadFileHeader(header, field)
		if err != nil {
			return nil, err
		}
		files = append(files, *file)
	}
	return files, nil
}

func loadFileHeader(header *multipart.FileHeader, field string) (*services.UploadedFile, error) {
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	return &services.UploadedFile{
		FieldName: field,
		Filename:  header.Filename,
		MIMEType:  header.Header.Get("Content-Type"),
		Size:      int64(len(data)),
		Data:      data,
	}, nil
}

// optionalFormValue distinguishes "field absent" from "field set to empty".
func optionalFormValue(form *multipart.Form, key string) *string {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// respondError maps typed service errors onto the response envelope.
// Unexpected errors are logged and surfaced as a generic server error.
func respondError(c echo.Context, err error) error {
	if appErr, ok := utils.AsAppError(err); ok {
		if appErr.Internal != nil {
			log.Printf("request failed: %v", appErr)
		}
		return c.JSON(appErr.Code, models.Response{
			Status:  appErr.Code,
			Message: appErr.Message,
		})
	}

	log.Printf("unexpected error: %v", err)
	return c.JSON(http.StatusInternalServerError, models.Response{
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong",
	})
}
