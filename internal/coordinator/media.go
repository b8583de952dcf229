package coordinator

// SourceMode selects where a media slot's content lives.
type SourceMode string

const (
	SourcePath   SourceMode = "path"
	SourceBinary SourceMode = "binary"
)

// MediaSource is a tagged union: a filesystem path the coordinator does not
// own, or a named binary property that must be materialized to a temp file
// the coordinator owns and deletes after the job settles.
type MediaSource struct {
	Mode     SourceMode
	Path     string
	Property string
}

// FromPath references external media by filesystem path.
func FromPath(path string) MediaSource {
	return MediaSource{Mode: SourcePath, Path: path}
}

// FromBinary references the named binary property on the item.
func FromBinary(property string) MediaSource {
	return MediaSource{Mode: SourceBinary, Property: property}
}
