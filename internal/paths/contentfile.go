package paths

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ContentFile is a script or text file stored on a server.
// Its identity is its Filename.
type ContentFile struct {
	Filename FilePath
	Content  string
}

// FileRemover is implemented by whatever owns a ContentFile.
type FileRemover interface {
	RemoveFile(path FilePath) bool
}

// DeleteFromServer removes the file from its owner and reports whether it was
// present.
func (f *ContentFile) DeleteFromServer(owner FileRemover) bool {
	return owner.RemoveFile(f.Filename)
}

// FileMap is an insertion-ordered, key-unique collection of content files.
//
// A FileMap is not safe for concurrent mutation; its owner serializes writes
// and readers treat it as a snapshot for the duration of a call.
type FileMap[K ~string] struct {
	m *orderedmap.OrderedMap[K, *ContentFile]
}

// ContentFileMap maps any content path to its file.
type ContentFileMap = FileMap[FilePath]

// NewFileMap returns an empty FileMap.
func NewFileMap[K ~string]() *FileMap[K] {
	return &FileMap[K]{m: orderedmap.New[K, *ContentFile]()}
}

// NewContentFileMap returns an empty ContentFileMap.
func NewContentFileMap() *ContentFileMap {
	return NewFileMap[FilePath]()
}

// Get returns the file stored under key.
func (fm *FileMap[K]) Get(key K) (*ContentFile, bool) {
	return fm.m.Get(key)
}

// Set stores file under key, keeping the original position if key exists.
func (fm *FileMap[K]) Set(key K, file *ContentFile) {
	fm.m.Set(key, file)
}

// Delete removes key and reports whether it was present.
func (fm *FileMap[K]) Delete(key K) bool {
	_, ok := fm.m.Delete(key)
	return ok
}

// Len returns the number of files.
func (fm *FileMap[K]) Len() int {
	return fm.m.Len()
}

// All iterates files in insertion order.
func (fm *FileMap[K]) All() iter.Seq2[K, *ContentFile] {
	return func(yield func(K, *ContentFile) bool) {
		for pair := fm.m.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// Keys returns the keys in insertion order.
func (fm *FileMap[K]) Keys() []K {
	keys := make([]K, 0, fm.m.Len())
	for pair := fm.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// ContentServer is the read side of a server: two independently stored
// collections exposed to the core as one namespace.
type ContentServer interface {
	ScriptFiles() *FileMap[ScriptFilePath]
	TextFiles() *FileMap[TextFilePath]
}

// AllContentFiles lazily merges a server's scripts and text files, scripts
// first. Nothing is copied.
func AllContentFiles(s ContentServer) iter.Seq2[FilePath, *ContentFile] {
	return func(yield func(FilePath, *ContentFile) bool) {
		for path, file := range s.ScriptFiles().All() {
			if !yield(FilePath(path), file) {
				return
			}
		}
		for path, file := range s.TextFiles().All() {
			if !yield(FilePath(path), file) {
				return
			}
		}
	}
}
