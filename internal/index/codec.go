package index

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// formatVersion prefixes every persisted index so an incompatible layout is
// rejected instead of misread.
const formatVersion = 1

// indexDTO is the persisted form of an index.
type indexDTO struct {
	ModelName string
	State     domain.VectorizerState
	Docs      []docDTO
	Vectors   [][]float64
}

// docDTO is the persisted form of a document record.
type docDTO struct {
	ID   string
	Text string
}

var (
	stringsMUS = ord.NewSliceSer[string](ord.String)
	floatsMUS  = ord.NewSliceSer[float64](raw.Float64)
	vectorsMUS = ord.NewSliceSer[[]float64](floatsMUS)
	docsMUS    = ord.NewSliceSer[docDTO](docMUS)
)

var docMUS = docSer{}

type docSer struct{}

func (docSer) Marshal(d docDTO, bs []byte) (n int) {
	n = ord.String.Marshal(d.ID, bs)
	n += ord.String.Marshal(d.Text, bs[n:])
	return n
}

func (docSer) Unmarshal(bs []byte) (d docDTO, n int, err error) {
	d.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	d.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (docSer) Size(d docDTO) (size int) {
	size = ord.String.Size(d.ID)
	size += ord.String.Size(d.Text)
	return size
}

func (docSer) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

var stateMUS = stateSer{}

type stateSer struct{}

func (stateSer) Marshal(st domain.VectorizerState, bs []byte) (n int) {
	n = ord.String.Marshal(st.Kind, bs)
	n += ord.String.Marshal(st.Model, bs[n:])
	n += varint.PositiveInt.Marshal(st.Dimensions, bs[n:])
	n += stringsMUS.Marshal(st.Terms, bs[n:])
	n += floatsMUS.Marshal(st.IDF, bs[n:])
	n += varint.PositiveInt.Marshal(st.MaxFeatures, bs[n:])
	n += raw.Float64.Marshal(st.MaxDocRatio, bs[n:])
	n += varint.PositiveInt.Marshal(st.MinDocCount, bs[n:])
	return n
}

func (stateSer) Unmarshal(bs []byte) (st domain.VectorizerState, n int, err error) {
	var n1 int
	st.Kind, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	st.Model, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	st.Dimensions, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	st.Terms, n1, err = stringsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	st.IDF, n1, err = floatsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	st.MaxFeatures, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	st.MaxDocRatio, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	st.MinDocCount, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	return
}

func (stateSer) Size(st domain.VectorizerState) (size int) {
	size = ord.String.Size(st.Kind)
	size += ord.String.Size(st.Model)
	size += varint.PositiveInt.Size(st.Dimensions)
	size += stringsMUS.Size(st.Terms)
	size += floatsMUS.Size(st.IDF)
	size += varint.PositiveInt.Size(st.MaxFeatures)
	size += raw.Float64.Size(st.MaxDocRatio)
	size += varint.PositiveInt.Size(st.MinDocCount)
	return size
}

func (stateSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.PositiveInt.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = stringsMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = floatsMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.PositiveInt.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.PositiveInt.Skip(bs[n:])
	n += n1
	return
}

var indexMUS = indexSer{}

type indexSer struct{}

func (indexSer) Marshal(dto indexDTO, bs []byte) (n int) {
	n = ord.String.Marshal(dto.ModelName, bs)
	n += stateMUS.Marshal(dto.State, bs[n:])
	n += docsMUS.Marshal(dto.Docs, bs[n:])
	n += vectorsMUS.Marshal(dto.Vectors, bs[n:])
	return n
}

func (indexSer) Unmarshal(bs []byte) (dto indexDTO, n int, err error) {
	var n1 int
	dto.ModelName, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	dto.State, n1, err = stateMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	dto.Docs, n1, err = docsMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	dto.Vectors, n1, err = vectorsMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (indexSer) Size(dto indexDTO) (size int) {
	size = ord.String.Size(dto.ModelName)
	size += stateMUS.Size(dto.State)
	size += docsMUS.Size(dto.Docs)
	size += vectorsMUS.Size(dto.Vectors)
	return size
}

func (indexSer) Skip(bs []byte) (n int, err error) {
	var n1 int
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	n1, err = stateMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = docsMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = vectorsMUS.Skip(bs[n:])
	n += n1
	return
}

// marshalIndex serializes a DTO with the format version prefix.
func marshalIndex(dto indexDTO) []byte {
	buf := make([]byte, varint.PositiveInt.Size(formatVersion)+indexMUS.Size(dto))
	n := varint.PositiveInt.Marshal(formatVersion, buf)
	indexMUS.Marshal(dto, buf[n:])
	return buf
}

// unmarshalIndex deserializes a DTO, rejecting unknown format versions.
func unmarshalIndex(bs []byte) (indexDTO, error) {
	version, n, err := varint.PositiveInt.Unmarshal(bs)
	if err != nil {
		return indexDTO{}, fmt.Errorf("read index format version: %w", err)
	}
	if version != formatVersion {
		return indexDTO{}, fmt.Errorf("unsupported index format version %d", version)
	}
	dto, _, err := indexMUS.Unmarshal(bs[n:])
	if err != nil {
		return indexDTO{}, fmt.Errorf("decode index: %w", err)
	}
	return dto, nil
}
