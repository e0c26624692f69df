package schema

// Annotation is used to attach arbitrary metadata to the schema objects
// in the declaration. The name of the annotation is used as its key.
type Annotation interface {
	// Name defines the name of the annotation to be retrieved by consumers.
	Name() string
}

// Merger wraps the single Merge function allowing annotations to be merged
// when they are declared more than once on the same schema object.
type Merger interface {
	Merge(Annotation) Annotation
}

// CommentAnnotation is a builtin schema annotation for attaching a
// human-readable description to a model.
type CommentAnnotation struct {
	Text string
}

// Name implements the Annotation interface.
func (*CommentAnnotation) Name() string {
	return "Comment"
}

// Comment returns a new CommentAnnotation with the given text.
func Comment(text string) *CommentAnnotation {
	return &CommentAnnotation{Text: text}
}

var _ Annotation = (*CommentAnnotation)(nil)
