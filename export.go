package probfilter

import (
	"encoding/base64"
	"math/big"
	"strconv"

	"github.com/hashicorp/go-multierror"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// bigInt is the seed wire format spec.md §6 calls for: big integers
// represented as {type: "BigInt", value: "<decimal-string>"} so an
// exported filter survives a host whose native numeric range is
// narrower than Go's uint64 (the format's own stated purpose).
type bigInt struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func encodeSeed(seed uint64) bigInt {
	return bigInt{Type: "BigInt", Value: strconv.FormatUint(seed, 10)}
}

func decodeSeed(b bigInt) (uint64, error) {
	if b.Type != "BigInt" {
		return 0, importError("expected BigInt seed, got %q", b.Type)
	}
	n := new(big.Int)
	if _, ok := n.SetString(b.Value, 10); !ok {
		return 0, importError("malformed BigInt value %q", b.Value)
	}
	if !n.IsUint64() {
		return 0, importError("seed %q out of uint64 range", b.Value)
	}
	return n.Uint64(), nil
}

// bitVectorRepr is the {size, content} wire format spec.md §6 assigns to
// every bit vector; content is base64-encoded packed bytes.
type bitVectorRepr struct {
	Size    uint32 `json:"size"`
	Content string `json:"content"`
}

func encodeBitVector(v *BitVector) bitVectorRepr {
	return bitVectorRepr{
		Size:    v.Size(),
		Content: base64.StdEncoding.EncodeToString(v.Bytes()),
	}
}

func decodeBitVector(r bitVectorRepr) (*BitVector, error) {
	data, err := base64.StdEncoding.DecodeString(r.Content)
	if err != nil {
		return nil, importError("malformed bit vector content: %s", err)
	}
	return BitVectorFromBytes(r.Size, data), nil
}

// classicBloomRecord mirrors spec.md §6's ClassicBloom export shape.
type classicBloomRecord struct {
	Seed     bigInt         `json:"_seed"`
	Size     uint32         `json:"_size"`
	NbHashes uint32         `json:"_nbHashes"`
	Filter   bitVectorRepr  `json:"_filter"`
	Length   uint64         `json:"_length"`
}

// Export serializes f into the structural record spec.md §6 defines.
func (f *ClassicBloom) Export() ([]byte, error) {
	record := classicBloomRecord{
		Seed:     encodeSeed(f.seed),
		Size:     f.size,
		NbHashes: f.hashes,
		Filter:   encodeBitVector(f.filter),
		Length:   f.length,
	}
	data, err := jsonAPI.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "classic bloom export failed")
	}
	return data, nil
}

// ImportClassicBloom rebuilds a ClassicBloom from Export's output.
func ImportClassicBloom(data []byte) (*ClassicBloom, error) {
	var record classicBloomRecord
	if err := jsonAPI.Unmarshal(data, &record); err != nil {
		return nil, importError("malformed classic bloom record: %s", err)
	}
	seed, seedErr := decodeSeed(record.Seed)
	if seedErr != nil {
		return nil, errors.Wrap(seedErr, "classic bloom import failed")
	}
	bv, bvErr := decodeBitVector(record.Filter)
	if bvErr != nil {
		return nil, errors.Wrap(bvErr, "classic bloom import failed")
	}
	return &ClassicBloom{
		seed:   seed,
		size:   record.Size,
		hashes: record.NbHashes,
		filter: bv,
		length: record.Length,
		hasher: NewHasher(),
		rnd:    newSeededRand(seed),
	}, nil
}

// partitionedBloomRecord mirrors spec.md §6's PartitionedBloom export shape.
type partitionedBloomRecord struct {
	Seed       bigInt          `json:"_seed"`
	Size       uint32          `json:"_size"`
	NbHashes   uint32          `json:"_nbHashes"`
	LoadFactor float64         `json:"_loadFactor"`
	Filter     []bitVectorRepr `json:"_filter"`
	Capacity   uint64          `json:"_capacity"`
	Ratio      float64         `json:"_ratio"`
}

// Export serializes f into the structural record spec.md §6 defines.
func (f *PartitionedBloom) Export() ([]byte, error) {
	partitions := make([]bitVectorRepr, len(f.partitions))
	for i, p := range f.partitions {
		partitions[i] = encodeBitVector(p)
	}
	record := partitionedBloomRecord{
		Seed:       encodeSeed(f.seed),
		Size:       f.subvecLen,
		NbHashes:   f.hashes,
		LoadFactor: f.loadFactor,
		Filter:     partitions,
		Capacity:   f.capacity,
		Ratio:      f.ratio,
	}
	data, err := jsonAPI.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "partitioned bloom export failed")
	}
	return data, nil
}

// ImportPartitionedBloom rebuilds a PartitionedBloom from Export's output.
func ImportPartitionedBloom(data []byte) (*PartitionedBloom, error) {
	record, err := decodePartitionedBloomRecord(data)
	if err != nil {
		return nil, err
	}
	return partitionedBloomFromRecord(record)
}

func decodePartitionedBloomRecord(data []byte) (partitionedBloomRecord, error) {
	var record partitionedBloomRecord
	if err := jsonAPI.Unmarshal(data, &record); err != nil {
		return record, importError("malformed partitioned bloom record: %s", err)
	}
	return record, nil
}

func partitionedBloomFromRecord(record partitionedBloomRecord) (*PartitionedBloom, error) {
	seed, seedErr := decodeSeed(record.Seed)
	if seedErr != nil {
		return nil, errors.Wrap(seedErr, "partitioned bloom import failed")
	}
	partitions := make([]*BitVector, len(record.Filter))
	var batch *multierror.Error
	for i, repr := range record.Filter {
		bv, bvErr := decodeBitVector(repr)
		if bvErr != nil {
			batch = multierror.Append(batch, errors.Wrapf(bvErr, "partition %d import failed", i))
			continue
		}
		partitions[i] = bv
	}
	if err := batch.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &PartitionedBloom{
		seed:       seed,
		hashes:     record.NbHashes,
		subvecLen:  record.Size,
		loadFactor: record.LoadFactor,
		capacity:   record.Capacity,
		ratio:      record.Ratio,
		partitions: partitions,
		hasher:     NewHasher(),
	}, nil
}

// scalableBloomRecord mirrors spec.md §6's ScalableBloom export shape.
type scalableBloomRecord struct {
	Seed        bigInt                   `json:"_seed"`
	InitialSize uint64                   `json:"_initial_size"`
	ErrorRate   float64                  `json:"_error_rate"`
	Ratio       float64                  `json:"_ratio"`
	Filters     []partitionedBloomRecord `json:"_filters"`
}

// Export serializes f into the structural record spec.md §6 defines.
func (f *ScalableBloom) Export() ([]byte, error) {
	filters := make([]partitionedBloomRecord, len(f.filters))
	for i, inner := range f.filters {
		partitions := make([]bitVectorRepr, len(inner.partitions))
		for j, p := range inner.partitions {
			partitions[j] = encodeBitVector(p)
		}
		filters[i] = partitionedBloomRecord{
			Seed:       encodeSeed(inner.seed),
			Size:       inner.subvecLen,
			NbHashes:   inner.hashes,
			LoadFactor: inner.loadFactor,
			Filter:     partitions,
			Capacity:   inner.capacity,
			Ratio:      inner.ratio,
		}
	}
	record := scalableBloomRecord{
		Seed:        encodeSeed(f.seed),
		InitialSize: f.initialSize,
		ErrorRate:   f.errorRate,
		Ratio:       f.ratio,
		Filters:     filters,
	}
	data, err := jsonAPI.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "scalable bloom export failed")
	}
	return data, nil
}

// ImportScalableBloom rebuilds a ScalableBloom from Export's output. Each
// inner filter is validated independently and failures are batched, the
// same per-item error-collection pattern the teacher's
// handleDataLoadResults uses for per-bucket restores.
func ImportScalableBloom(data []byte) (*ScalableBloom, error) {
	var record scalableBloomRecord
	if err := jsonAPI.Unmarshal(data, &record); err != nil {
		return nil, importError("malformed scalable bloom record: %s", err)
	}
	seed, seedErr := decodeSeed(record.Seed)
	if seedErr != nil {
		return nil, errors.Wrap(seedErr, "scalable bloom import failed")
	}

	filters := make([]*PartitionedBloom, len(record.Filters))
	var batch *multierror.Error
	for i, inner := range record.Filters {
		pf, pfErr := partitionedBloomFromRecord(inner)
		if pfErr != nil {
			batch = multierror.Append(batch, errors.Wrapf(pfErr, "inner filter %d import failed", i))
			continue
		}
		filters[i] = pf
	}
	if err := batch.ErrorOrNil(); err != nil {
		return nil, err
	}

	return &ScalableBloom{
		seed:        seed,
		initialSize: record.InitialSize,
		errorRate:   record.ErrorRate,
		ratio:       record.Ratio,
		filters:     filters,
		hasher:      NewHasher(),
	}, nil
}

// cuckooBucketRecord mirrors spec.md §6's cuckoo bucket export shape.
type cuckooBucketRecord struct {
	Size     int      `json:"_size"`
	Elements []string `json:"_elements"`
}

// cuckooRecord mirrors spec.md §6's Cuckoo export shape.
type cuckooRecord struct {
	Size              uint32               `json:"_size"`
	FingerprintLength uint32               `json:"_fingerprintLength"`
	Length            uint64               `json:"_length"`
	MaxKicks          int                  `json:"_maxKicks"`
	BucketSize        int                  `json:"_bucketSize"`
	Seed              bigInt               `json:"_seed"`
	Filter            []cuckooBucketRecord `json:"_filter"`
}

// Export serializes f into the structural record spec.md §6 defines.
func (f *CuckooFilter) Export() ([]byte, error) {
	buckets := make([]cuckooBucketRecord, len(f.buckets))
	for i, b := range f.buckets {
		elements := make([]string, len(b.entries))
		copy(elements, b.entries)
		buckets[i] = cuckooBucketRecord{Size: b.capacity, Elements: elements}
	}
	record := cuckooRecord{
		Size:              f.size,
		FingerprintLength: f.fingerprintLength,
		Length:            f.length,
		MaxKicks:          f.maxKicks,
		BucketSize:        f.bucketSize,
		Seed:              encodeSeed(f.seed),
		Filter:            buckets,
	}
	data, err := jsonAPI.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "cuckoo export failed")
	}
	return data, nil
}

// ImportCuckooFilter rebuilds a CuckooFilter from Export's output. Every
// bucket is validated independently (capacity must not be exceeded by
// its elements) and failures are batched.
func ImportCuckooFilter(data []byte) (*CuckooFilter, error) {
	var record cuckooRecord
	if err := jsonAPI.Unmarshal(data, &record); err != nil {
		return nil, importError("malformed cuckoo record: %s", err)
	}
	seed, seedErr := decodeSeed(record.Seed)
	if seedErr != nil {
		return nil, errors.Wrap(seedErr, "cuckoo import failed")
	}

	buckets := make([]*bucket, len(record.Filter))
	var batch *multierror.Error
	for i, b := range record.Filter {
		if len(b.Elements) > b.Size {
			batch = multierror.Append(batch, importError("bucket %d holds %d elements, exceeds capacity %d", i, len(b.Elements), b.Size))
			continue
		}
		newB := newBucket(b.Size)
		newB.entries = append(newB.entries, b.Elements...)
		buckets[i] = newB
	}
	if err := batch.ErrorOrNil(); err != nil {
		return nil, err
	}

	return &CuckooFilter{
		seed:              seed,
		size:              record.Size,
		bucketSize:        record.BucketSize,
		fingerprintLength: record.FingerprintLength,
		maxKicks:          record.MaxKicks,
		length:            record.Length,
		buckets:           buckets,
		hasher:            NewHasher(),
		rnd:               newSeededRand(seed),
	}, nil
}
