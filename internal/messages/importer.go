package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-localize/internal/domain"
	"github.com/goliatone/go-localize/internal/locales"
)

// DefaultLocaleSource is the slice of locales.Graph the importer needs.
type DefaultLocaleSource interface {
	DefaultLocale(ctx context.Context) (*locales.Locale, error)
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithImportStatus sets the status given to imported translations.
func WithImportStatus(status domain.MessageStatus) ImporterOption {
	return func(i *Importer) {
		if status.Valid() {
			i.status = status
		}
	}
}

// Importer reads go-i18n message files (active.<locale>.<toml|yaml|json>).
// Files in the default locale define messages; files in any other locale
// write translations of already defined messages.
type Importer struct {
	catalog *Catalog
	locales DefaultLocaleSource
	bundle  *i18n.Bundle
	status  domain.MessageStatus
}

// ImportResult counts what one file wrote.
type ImportResult struct {
	Locale     string
	Defined    int
	Translated int
	Skipped    []string
}

// NewImporter constructs an Importer.
func NewImporter(catalog *Catalog, source DefaultLocaleSource, opts ...ImporterOption) *Importer {
	if catalog == nil {
		panic(ErrCatalogRequired)
	}
	if source == nil {
		panic(ErrGraphRequired)
	}
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	imp := &Importer{
		catalog: catalog,
		locales: source,
		bundle:  bundle,
		status:  domain.MessageStatusApproved,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(imp)
		}
	}
	return imp
}

// ImportFile imports the message file at path.
func (i *Importer) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("messages: read %q: %w", path, err)
	}
	return i.ImportBytes(ctx, buf, path)
}

// ImportBytes imports buf; path only supplies the locale and format, as in
// go-i18n file naming.
func (i *Importer) ImportBytes(ctx context.Context, buf []byte, path string) (ImportResult, error) {
	file, err := i.bundle.ParseMessageFileBytes(buf, path)
	if err != nil {
		return ImportResult{}, &domain.ValidationError{Field: "file", Message: err.Error()}
	}
	code, err := locales.NormalizeCode(file.Tag.String())
	if err != nil {
		return ImportResult{}, err
	}
	if _, err := i.catalog.graph.FallbackCodes(ctx, code); err != nil {
		return ImportResult{}, err
	}
	def, err := i.locales.DefaultLocale(ctx)
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{Locale: code}
	for _, msg := range file.Messages {
		if err := domain.Cancelled(ctx); err != nil {
			return result, err
		}
		value := strings.TrimSpace(msg.Other)
		if value == "" {
			result.Skipped = append(result.Skipped, msg.ID)
			continue
		}
		if code == def.Code {
			if _, err := i.catalog.DefineMessage(ctx, MessageInput{
				Key:          msg.ID,
				DefaultValue: msg.Other,
				Description:  msg.Description,
			}); err != nil {
				return result, fmt.Errorf("define %s: %w", msg.ID, err)
			}
			result.Defined++
			continue
		}
		status := i.status
		if _, err := i.catalog.UpsertTranslation(ctx, TranslationInput{
			Key:    msg.ID,
			Locale: code,
			Value:  msg.Other,
			Status: &status,
			Actor:  "import",
		}); err != nil {
			if domain.IsNotFound(err) {
				result.Skipped = append(result.Skipped, msg.ID)
				continue
			}
			return result, fmt.Errorf("translate %s: %w", msg.ID, err)
		}
		result.Translated++
	}
	return result, nil
}
