package fastq

// Record is one sequencing read: the four logical lines of a FASTQ stream.
// Records are immutable once returned.
type Record struct {
	Name      string `json:"name"`
	Sequence  string `json:"sequence"`
	Separator string `json:"separator"`
	Quality   string `json:"quality"`
	// Phred64 records the quality encoding offset: +64 when true, +33
	// otherwise. The quality bytes are carried verbatim either way.
	Phred64 bool `json:"phred64,omitempty"`
}

// String re-serializes the record as its four input lines with a trailing
// terminator.
func (r *Record) String() string {
	return r.Name + "\n" + r.Sequence + "\n" + r.Separator + "\n" + r.Quality + "\n"
}

// RecordPair is one read from each side of a paired stream. Pairing is
// positional; no identity check is made between the two names.
type RecordPair struct {
	Left  *Record `json:"left"`
	Right *Record `json:"right"`
}
