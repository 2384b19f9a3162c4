package noteservice

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mdnote/internal/apperr"
	"github.com/starford/mdnote/internal/models"
	"github.com/starford/mdnote/pkg/nullable"
)

// Input limits.
const (
	MaxTitleLength   = 500
	MaxNameLength    = 200
	MaxContentLength = 10 << 20
	MaxSearchLimit   = 200
	MaxListLimit     = 500
)

// Themes accepted by UpdateSettings.
var Themes = []any{"system", "light", "dark"}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// CreateNoteInput is the payload for CreateNote.
type CreateNoteInput struct {
	FolderID *string `json:"folder_id"`
	Title    string  `json:"title"`
	Content  string  `json:"content"`
}

// Validate checks the input.
func (in CreateNoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FolderID, validation.NilOrNotEmpty),
		validation.Field(&in.Title, validation.RuneLength(0, MaxTitleLength)),
		validation.Field(&in.Content, validation.Length(0, MaxContentLength)),
	)
}

// UpdateNoteInput is a partial note update. folder_id distinguishes an
// absent key from an explicit null.
type UpdateNoteInput struct {
	Title    *string                `json:"title"`
	Content  *string                `json:"content"`
	FolderID nullable.Field[string] `json:"folder_id"`
}

// Validate checks the input.
func (in UpdateNoteInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.RuneLength(0, MaxTitleLength)),
		validation.Field(&in.Content, validation.Length(0, MaxContentLength)),
		validation.Field(&in.FolderID, validation.By(notEmptyValue)),
	)
}

// CreateFolderInput is the payload for CreateFolder.
type CreateFolderInput struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// Validate checks the input.
func (in CreateFolderInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, MaxNameLength)),
		validation.Field(&in.ParentID, validation.NilOrNotEmpty),
	)
}

// UpdateFolderInput is a partial folder update.
type UpdateFolderInput struct {
	Name     *string                `json:"name"`
	ParentID nullable.Field[string] `json:"parent_id"`
}

// Validate checks the input.
func (in UpdateFolderInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.RuneLength(1, MaxNameLength)),
		validation.Field(&in.ParentID, validation.By(notEmptyValue)),
	)
}

// CreateTagInput is the payload for CreateTag.
type CreateTagInput struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// Validate checks the input.
func (in CreateTagInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.RuneLength(1, MaxNameLength)),
		validation.Field(&in.Color, validation.NilOrNotEmpty, validation.Match(hexColor)),
	)
}

// UpdateTagInput is a partial tag update.
type UpdateTagInput struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

// Validate checks the input.
func (in UpdateTagInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.RuneLength(1, MaxNameLength)),
		validation.Field(&in.Color, validation.NilOrNotEmpty, validation.Match(hexColor)),
	)
}

// AddLinkInput is the payload for AddLink.
type AddLinkInput struct {
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	Context  *string `json:"context"`
}

// Validate checks the input.
func (in AddLinkInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.SourceID, validation.Required),
		validation.Field(&in.TargetID, validation.Required),
	)
}

func validateSettings(s models.Settings) error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Theme, validation.Required, validation.In(Themes...)),
		validation.Field(&s.FontSize, validation.Required, validation.Min(8), validation.Max(72)),
		validation.Field(&s.FontFamily, validation.Required, validation.RuneLength(1, MaxNameLength)),
		validation.Field(&s.AutoSaveDelay, validation.Min(0), validation.Max(60000)),
	)
}

// notEmptyValue rejects a present, non-null, empty id.
func notEmptyValue(value any) error {
	f, ok := value.(nullable.Field[string])
	if !ok {
		return nil
	}
	if v, set := f.Get(); set && v == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// invalid turns a validation failure into an apperr.KindInvalid error.
func invalid(op string, err error) error {
	if err == nil {
		return nil
	}
	return apperr.Invalid(op, err.Error())
}
