package translationscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-localize/internal/domain"
)

const (
	sourceChangedMessageType            = "localize.translations.source_changed"
	upsertTranslationMessageType        = "localize.translations.upsert"
	transitionTranslationMessageType    = "localize.translations.transition"
	deleteEntityTranslationsMessageType = "localize.translations.delete_entity"
	upsertMessageTranslationMessageType = "localize.messages.upsert_translation"
	importMessagesMessageType           = "localize.messages.import"
)

// SourceChangedCommand reports a new source text for an entity field.
type SourceChangedCommand struct {
	EntityType   string `json:"entity_type"`
	EntityID     string `json:"entity_id"`
	Field        string `json:"field"`
	SourceLocale string `json:"source_locale"`
	SourceText   string `json:"source_text"`
	Actor        string `json:"actor,omitempty"`
}

// Type implements command.Message.
func (SourceChangedCommand) Type() string { return sourceChangedMessageType }

// Validate ensures the entity field and source locale are present.
func (m SourceChangedCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.EntityType, validation.Required),
		validation.Field(&m.EntityID, validation.Required),
		validation.Field(&m.Field, validation.Required),
		validation.Field(&m.SourceLocale, validation.Required),
	)
}

// UpsertTranslationCommand writes the translated text of a field. Without
// SourceText the unit must exist and keeps its stored source snapshot.
type UpsertTranslationCommand struct {
	EntityType   string `json:"entity_type"`
	EntityID     string `json:"entity_id"`
	Field        string `json:"field"`
	Locale       string `json:"locale"`
	TargetText   string `json:"target_text"`
	SourceLocale string `json:"source_locale,omitempty"`
	SourceText   string `json:"source_text,omitempty"`
	Status       string `json:"status,omitempty"`
	Actor        string `json:"actor,omitempty"`
}

// Type implements command.Message.
func (UpsertTranslationCommand) Type() string { return upsertTranslationMessageType }

// Validate ensures the unit key is complete and any status is known.
func (m UpsertTranslationCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.EntityType) == "" || strings.TrimSpace(m.EntityID) == "" {
		errs["entity"] = validation.NewError("localize.translations.upsert.entity_required", "entity_type and entity_id are required")
	}
	if strings.TrimSpace(m.Field) == "" {
		errs["field"] = validation.NewError("localize.translations.upsert.field_required", "field is required")
	}
	if strings.TrimSpace(m.Locale) == "" {
		errs["locale"] = validation.NewError("localize.translations.upsert.locale_required", "locale is required")
	}
	if m.SourceText != "" && strings.TrimSpace(m.SourceLocale) == "" {
		errs["source_locale"] = validation.NewError("localize.translations.upsert.source_locale_required", "source_locale is required with source_text")
	}
	if m.Status != "" {
		if _, ok := domain.ParseUnitStatus(m.Status); !ok {
			errs["status"] = validation.NewError("localize.translations.upsert.status_invalid", "status is not a known unit status")
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// TransitionTranslationCommand moves a unit through the review workflow.
type TransitionTranslationCommand struct {
	EntityType string  `json:"entity_type"`
	EntityID   string  `json:"entity_id"`
	Field      string  `json:"field"`
	Locale     string  `json:"locale"`
	To         string  `json:"to"`
	TargetText *string `json:"target_text,omitempty"`
	Actor      string  `json:"actor,omitempty"`
}

// Type implements command.Message.
func (TransitionTranslationCommand) Type() string { return transitionTranslationMessageType }

// Validate ensures the unit key and target status are present.
func (m TransitionTranslationCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.EntityType, validation.Required),
		validation.Field(&m.EntityID, validation.Required),
		validation.Field(&m.Field, validation.Required),
		validation.Field(&m.Locale, validation.Required),
		validation.Field(&m.To, validation.Required, validation.By(knownUnitStatus)),
	)
}

func knownUnitStatus(value any) error {
	raw, _ := value.(string)
	if _, ok := domain.ParseUnitStatus(raw); !ok {
		return validation.NewError("localize.translations.status_invalid", "must be a known unit status")
	}
	return nil
}

// DeleteEntityTranslationsCommand removes every unit of an entity.
type DeleteEntityTranslationsCommand struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

// Type implements command.Message.
func (DeleteEntityTranslationsCommand) Type() string { return deleteEntityTranslationsMessageType }

// Validate ensures the entity reference is complete.
func (m DeleteEntityTranslationsCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.EntityType, validation.Required),
		validation.Field(&m.EntityID, validation.Required),
	)
}

// UpsertMessageTranslationCommand writes a UI message translation.
type UpsertMessageTranslationCommand struct {
	Key    string `json:"key"`
	Locale string `json:"locale"`
	Value  string `json:"value"`
	Status string `json:"status,omitempty"`
	Actor  string `json:"actor,omitempty"`
}

// Type implements command.Message.
func (UpsertMessageTranslationCommand) Type() string { return upsertMessageTranslationMessageType }

// Validate ensures key and locale are present and any status is known.
func (m UpsertMessageTranslationCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Key, validation.Required),
		validation.Field(&m.Locale, validation.Required),
		validation.Field(&m.Status, validation.In("draft", "approved", "rejected")),
	)
}

// ImportMessagesCommand loads go-i18n message files into the catalog.
type ImportMessagesCommand struct {
	Paths []string `json:"paths"`
}

// Type implements command.Message.
func (ImportMessagesCommand) Type() string { return importMessagesMessageType }

// Validate ensures at least one file is named.
func (m ImportMessagesCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Paths, validation.Required, validation.Each(validation.Required)),
	)
}
