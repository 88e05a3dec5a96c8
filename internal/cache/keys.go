package cache

import (
	"strconv"
	"strings"
)

// Key namespaces shared by the resolvers. Prefix helpers always end with the
// separator so that prefix deletes never match a sibling key.
const (
	Separator = ":"

	chainNamespace          = "locales:chain"
	unitResolveNamespace    = "units:resolve"
	messageResolveNamespace = "messages:resolve"
	bundleNamespace         = "messages:bundle"
)

func join(parts ...string) string {
	return strings.Join(parts, Separator)
}

// ChainKey identifies the memoised fallback chain of a locale.
func ChainKey(locale string) string {
	return join(chainNamespace, locale)
}

// ChainPrefix covers every memoised fallback chain.
func ChainPrefix() string {
	return chainNamespace + Separator
}

// UnitResolveKey identifies the resolution of one entity field in one locale.
func UnitResolveKey(entityType, entityID, field, locale string) string {
	return join(unitResolveNamespace, entityType, entityID, field, locale)
}

// UnitFieldPrefix covers every locale resolution of one entity field.
func UnitFieldPrefix(entityType, entityID, field string) string {
	return join(unitResolveNamespace, entityType, entityID, field) + Separator
}

// UnitEntityPrefix covers every resolution of one entity.
func UnitEntityPrefix(entityType, entityID string) string {
	return join(unitResolveNamespace, entityType, entityID) + Separator
}

// UnitResolvePrefix covers every unit resolution.
func UnitResolvePrefix() string {
	return unitResolveNamespace + Separator
}

// MessageResolveKey identifies the resolution of one UI message in one locale.
func MessageResolveKey(messageKey, locale string) string {
	return join(messageResolveNamespace, messageKey, locale)
}

// MessageResolvePrefix covers every locale resolution of one message, or all
// message resolutions when messageKey is blank.
func MessageResolvePrefix(messageKey string) string {
	if messageKey == "" {
		return messageResolveNamespace + Separator
	}
	return join(messageResolveNamespace, messageKey) + Separator
}

// BundleKey identifies a whole-locale bundle for one catalog version.
func BundleKey(version uint64, locale string) string {
	return join(bundleNamespace, "v"+strconv.FormatUint(version, 10), locale)
}

// BundlePrefix covers every cached bundle.
func BundlePrefix() string {
	return bundleNamespace + Separator
}
