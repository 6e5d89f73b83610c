package core

// ColumnProfile is the inference result for one column of a file.
type ColumnProfile struct {
	Name        string  `json:"name"`
	MissingCode string  `json:"missing_code,omitempty"`
	Verdict     Verdict `json:"verdict"`
}

// TableProfile is the inference result for a whole file.
type TableProfile struct {
	Columns   []ColumnProfile `json:"columns"`
	Rows      int             `json:"rows"`
	Truncated bool            `json:"truncated"`
}

// ProfileData infers a type and missing-value code for every column of df.
// Unnamed columns are profiled without missing-code detection.
func (in *Inferencer) ProfileData(df *DataFile) *TableProfile {
	p := &TableProfile{Rows: df.NumRows(), Truncated: df.Truncated}
	for i, name := range df.Headers {
		sample := df.ColumnAt(i)

		var missing string
		if !IsUnnamed(name) {
			missing, _ = in.detectMissing(sample.Values)
		}

		p.Columns = append(p.Columns, ColumnProfile{
			Name:        name,
			MissingCode: missing,
			Verdict:     in.InferWithMissing(sample, missing),
		})
	}
	return p
}

// ProfileFile reads path and profiles it.
func (in *Inferencer) ProfileFile(path string, opts ReadOptions) (*TableProfile, error) {
	df, err := ReadDataFile(path, opts)
	if err != nil {
		return nil, err
	}
	return in.ProfileData(df), nil
}
