package delivery

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-tone/internal/domain/alarm"
	pb "github.com/oshokin/alarm-tone/internal/pb/v1"
)

// Repository defines persistence operations for delivered sound files.
type Repository interface {
	Save(ctx context.Context, d *domain.Delivery, data []byte) error
	List(ctx context.Context) ([]*domain.Delivery, error)
	Get(ctx context.Context, id string) (*domain.Delivery, error)
	Path(id string) string
}

const (
	// IndexFilename is the name of the index inside the storage directory.
	IndexFilename = "index.json"

	dirPermissions  = 0o750
	filePermissions = 0o600
)

// ErrNotFound is returned for unknown delivery IDs.
var ErrNotFound = errors.New("delivery not found")

// FileRepository keeps deliveries in a directory on disk.
type FileRepository struct {
	// dir is the storage directory.
	dir string
	// mu protects the index file.
	mu sync.Mutex
}

// NewFileRepository creates the storage directory if needed.
func NewFileRepository(dir string) (*FileRepository, error) {
	dir = filepath.Clean(dir)

	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &FileRepository{
		dir: dir,
	}, nil
}

// Path returns where the file of the delivery is stored.
func (r *FileRepository) Path(id string) string {
	return filepath.Join(r.dir, filepath.Base(id)+".wav")
}

// Save writes the file and appends the delivery to the index.
func (r *FileRepository) Save(_ context.Context, d *domain.Delivery, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	deliveries, err := r.load()
	if err != nil {
		return err
	}

	path := r.Path(d.ID)

	if err = os.WriteFile(path, data, filePermissions); err != nil {
		return fmt.Errorf("write sound file: %w", err)
	}

	deliveries = append(deliveries, d.Clone())

	if err = r.store(deliveries); err != nil {
		// A file without an index entry is never listed or served.
		if rmErr := os.Remove(path); rmErr != nil {
			return errors.Join(err, fmt.Errorf("remove sound file: %w", rmErr))
		}

		return err
	}

	return nil
}

// List returns all deliveries, oldest first.
func (r *FileRepository) List(_ context.Context) ([]*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Get returns the delivery with the given ID.
func (r *FileRepository) Get(_ context.Context, id string) (*domain.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deliveries, err := r.load()
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(deliveries, func(d *domain.Delivery) bool {
		return d.ID == id
	})
	if i < 0 {
		return nil, fmt.Errorf("%q: %w", id, ErrNotFound)
	}

	return deliveries[i], nil
}

// load reads the index. A missing index is an empty one.
func (r *FileRepository) load() ([]*domain.Delivery, error) {
	contents, err := os.ReadFile(filepath.Join(r.dir, IndexFilename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read index: %w", err)
	}

	var index structpb.ListValue
	if err = protojson.Unmarshal(contents, &index); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}

	deliveries := make([]*domain.Delivery, 0, len(index.GetValues()))

	for _, v := range index.GetValues() {
		d, err := pb.ParseReceipt(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("decode index entry: %w", err)
		}

		deliveries = append(deliveries, d)
	}

	return deliveries, nil
}

// store rewrites the index through a temporary file.
func (r *FileRepository) store(deliveries []*domain.Delivery) error {
	index := &structpb.ListValue{
		Values: make([]*structpb.Value, 0, len(deliveries)),
	}

	for _, d := range deliveries {
		receipt, err := pb.NewReceipt(d)
		if err != nil {
			return err
		}

		index.Values = append(index.Values, structpb.NewStructValue(receipt))
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline:       true,
		EmitUnpopulated: true,
	}

	data, err := marshalOptions.Marshal(index)
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	path := filepath.Join(r.dir, IndexFilename)
	tmp := path + ".tmp"

	if err = os.WriteFile(tmp, data, filePermissions); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}

	return nil
}
