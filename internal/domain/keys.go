package domain

// KeyPrefix is the default prefix for every vector-store key.
const KeyPrefix = "pdfagent:"
