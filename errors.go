package fastq

import "fmt"

// MalformedRecordError reports a record whose quality and sequence lengths
// disagree. It carries the offending lines for diagnosis. The stream stays
// readable after the error, so callers can skip the record or stop.
type MalformedRecordError struct {
	Name      string
	Sequence  string
	Separator string
	Quality   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("fastq: sequence and quality have different length (%d vs %d) in record %s",
		len(e.Sequence), len(e.Quality), e.Name)
}
