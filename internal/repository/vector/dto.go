package vector

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/kailas-cloud/pdfagent/internal/domain/chunk"
)

const (
	fieldDocumentID = "document_id"
	fieldChunkIndex = "chunk_index"
	fieldPage       = "page_number"
	fieldEndPage    = "end_page"
	fieldStart      = "start"
	fieldEnd        = "end"
	fieldContent    = "content"
	fieldEmbedding  = "embedding"
)

var returnFields = []string{
	fieldDocumentID, fieldChunkIndex, fieldPage, fieldEndPage, fieldStart, fieldEnd, fieldContent,
}

// buildHashFields converts a chunk and its embedding into a flat map for HSET.
func buildHashFields(c *chunk.Chunk, vec []float32) map[string]string {
	return map[string]string{
		fieldDocumentID: c.DocumentID,
		fieldChunkIndex: strconv.Itoa(c.Index),
		fieldPage:       strconv.Itoa(c.PageNumber),
		fieldEndPage:    strconv.Itoa(c.EndPage),
		fieldStart:      strconv.Itoa(c.Start),
		fieldEnd:        strconv.Itoa(c.End),
		fieldContent:    c.Text,
		fieldEmbedding:  vectorToBytes(vec),
	}
}

// parseHashFields converts search fields back into chunk metadata.
func parseHashFields(m map[string]string) chunk.Chunk {
	return chunk.Chunk{
		DocumentID: m[fieldDocumentID],
		Index:      atoi(m[fieldChunkIndex]),
		PageNumber: atoi(m[fieldPage]),
		EndPage:    atoi(m[fieldEndPage]),
		Start:      atoi(m[fieldStart]),
		End:        atoi(m[fieldEnd]),
		Text:       m[fieldContent],
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
