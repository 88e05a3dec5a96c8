package interfaces

// Translator renders UI messages for templates and other call sites without
// a request context. args are alternating placeholder names and values.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}
