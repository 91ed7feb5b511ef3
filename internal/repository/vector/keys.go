package vector

import "strconv"

// Key layout, per document:
//
//	<prefix>vec:<doc>:gen            generation counter (INCR)
//	<prefix>vec:<doc>:active         active generation number
//	<prefix>vec:<doc>:<gen>:idx      FT index of one generation
//	<prefix>vec:<doc>:<gen>:<chunk>  one HASH per chunk
type keys struct {
	prefix string
}

func (k keys) doc(docID string) string { return k.prefix + "vec:" + docID + ":" }

func (k keys) counter(docID string) string { return k.doc(docID) + "gen" }

func (k keys) active(docID string) string { return k.doc(docID) + "active" }

func (k keys) generation(docID string, gen int64) string {
	return k.doc(docID) + strconv.FormatInt(gen, 10) + ":"
}

func (k keys) index(docID string, gen int64) string { return k.generation(docID, gen) + "idx" }

func (k keys) entry(docID string, gen int64, chunkIndex int) string {
	return k.generation(docID, gen) + strconv.Itoa(chunkIndex)
}
