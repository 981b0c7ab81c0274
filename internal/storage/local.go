package storage

import (
	"errors"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/AjayAlluri/Toyota-Financing/internal/config"
)

var (
	ErrTooLarge        = errors.New("file is too large")
	ErrUnsupportedType = errors.New("file type is not allowed")
	ErrNotFound        = errors.New("file not found")
	ErrEmpty           = errors.New("file is empty")
)

// Stored describes a file written to disk.
type Stored struct {
	Key      string
	MIMEType string
	Size     int64
}

// Local хранит загруженные документы на диске в каталогах владельцев.
type Local struct {
	root     string
	maxBytes int64
	allowed  map[string]struct{}
}

// NewLocal создает хранилище и корневой каталог, если его нет.
func NewLocal(cfg config.StorageConfig) (*Local, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o750); err != nil {
		return nil, eris.Wrapf(err, "storage: create upload dir %s", cfg.UploadDir)
	}

	allowed := make(map[string]struct{}, len(cfg.AllowedMIMETypes))
	for _, value := range cfg.AllowedMIMETypes {
		allowed[baseType(value)] = struct{}{}
	}

	return &Local{
		root:     cfg.UploadDir,
		maxBytes: cfg.MaxUploadBytes,
		allowed:  allowed,
	}, nil
}

func (s *Local) MaxBytes() int64 {
	return s.maxBytes
}

// Save читает файл целиком с ограничением размера, определяет тип по
// содержимому и записывает его под ключом <owner>/<uuid><ext>.
func (s *Local) Save(ownerID uuid.UUID, r io.Reader) (Stored, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return Stored{}, eris.Wrap(err, "storage: read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return Stored{}, ErrTooLarge
	}
	if len(data) == 0 {
		return Stored{}, ErrEmpty
	}

	detected := mimetype.Detect(data)
	mimeType, ok := s.match(detected)
	if !ok {
		return Stored{}, eris.Wrapf(ErrUnsupportedType, "detected %s", detected.String())
	}

	key := path.Join(ownerID.String(), uuid.NewString()+detected.Extension())
	target := s.path(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return Stored{}, eris.Wrap(err, "storage: create owner dir")
	}

	if err := os.WriteFile(target, data, 0o640); err != nil {
		return Stored{}, eris.Wrap(err, "storage: write file")
	}

	return Stored{Key: key, MIMEType: mimeType, Size: int64(len(data))}, nil
}

// Open открывает сохраненный файл по ключу.
func (s *Local) Open(key string) (io.ReadSeekCloser, error) {
	if !validKey(key) {
		return nil, ErrNotFound
	}

	file, err := os.Open(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, eris.Wrap(err, "storage: open file")
	}
	return file, nil
}

// Delete удаляет файл. Отсутствующий файл не считается ошибкой.
func (s *Local) Delete(key string) error {
	if !validKey(key) {
		return ErrNotFound
	}

	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return eris.Wrap(err, "storage: delete file")
	}
	return nil
}

func (s *Local) match(detected *mimetype.MIME) (string, bool) {
	value := baseType(detected.String())
	_, ok := s.allowed[value]
	return value, ok
}

func (s *Local) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func validKey(key string) bool {
	if key == "" || strings.Contains(key, "\\") {
		return false
	}
	cleaned := path.Clean(key)
	return cleaned == key && !path.IsAbs(cleaned) && !strings.HasPrefix(cleaned, "..")
}

func baseType(value string) string {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(value))
	}
	return mediaType
}
