package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

func LocaleUUID(localeCode string) uuid.UUID {
	return UUID("go-localize:locale:" + strings.ToLower(strings.TrimSpace(localeCode)))
}

// UnitUUID keys a translation unit by its composite identity so repeated
// upserts of the same (entity, field, target locale) always land on one row.
func UnitUUID(entityType, entityID, field, targetLocale string) uuid.UUID {
	return UUID(strings.Join([]string{
		"go-localize:unit",
		strings.TrimSpace(entityType),
		strings.TrimSpace(entityID),
		strings.TrimSpace(field),
		strings.ToLower(strings.TrimSpace(targetLocale)),
	}, ":"))
}

func MessageUUID(namespace, key string) uuid.UUID {
	return UUID("go-localize:message:" + strings.TrimSpace(namespace) + "." + strings.TrimSpace(key))
}

func MessageTranslationUUID(messageID uuid.UUID, localeCode string) uuid.UUID {
	return UUID("go-localize:message_translation:" + messageID.String() + ":" + strings.ToLower(strings.TrimSpace(localeCode)))
}

func GlossaryUUID(term, sourceLocale, targetLocale string) uuid.UUID {
	return UUID("go-localize:glossary:" + strings.ToLower(strings.TrimSpace(sourceLocale)) + ":" +
		strings.ToLower(strings.TrimSpace(targetLocale)) + ":" + strings.ToLower(strings.TrimSpace(term)))
}
