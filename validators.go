package fastq

// Validator is a function that returns true when a record passes validation.
// Records failing any validator are skipped by Next, not returned.
type Validator func(r *Record) bool

// ValidateMinLength skips records with a sequence shorter than n bases.
func ValidateMinLength(n int) Validator {
	return func(r *Record) bool {
		return len(r.Sequence) >= n
	}
}

// ValidateMaxN skips records with more than max ambiguous (N) bases.
func ValidateMaxN(max int) Validator {
	return func(r *Record) bool {
		var n int
		for i := 0; i < len(r.Sequence); i++ {
			if r.Sequence[i] == 'N' || r.Sequence[i] == 'n' {
				n++
				if n > max {
					return false
				}
			}
		}
		return true
	}
}

// ValidateMeanQuality skips records whose mean quality score is below min,
// honoring the record's declared encoding offset. Records with an empty
// sequence are skipped.
func ValidateMeanQuality(min float64) Validator {
	return func(r *Record) bool {
		if len(r.Quality) == 0 {
			return false
		}
		offset := 33
		if r.Phred64 {
			offset = 64
		}
		var sum int
		for i := 0; i < len(r.Quality); i++ {
			sum += int(r.Quality[i]) - offset
		}
		return float64(sum)/float64(len(r.Quality)) >= min
	}
}
