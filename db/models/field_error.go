package models

import "encoding/json"

// Error codes attached to import events and rows. Downstream consumers
// (results UI, merge resolution) branch on these exact strings.
const (
	ErrEmptyFile       = "EMPTY_FILE"
	ErrMissingField    = "MISSING_FIELD"
	ErrUnmatchedFields = "UNMATCHED_FIELDS"
	ErrGeneric         = "GENERIC_ERROR"

	ErrInvalidFloat    = "INVALID_FLOAT"
	ErrFloatRange      = "FLOAT_RANGE"
	ErrInvalidChoice   = "INVALID_CHOICE"
	ErrInvalidBool     = "INVALID_BOOL"
	ErrInvalidDate     = "INVALID_DATE"
	ErrMissingPoints   = "MISSING_POINTS"
	ErrInvalidGeom     = "INVALID_GEOM"
	ErrGeomOutOfBounds = "GEOM_OUT_OF_BOUNDS"
	ErrExclTreeFields  = "EXCL_TREE_FIELDS"

	ErrInvalidSpecies = "INVALID_SPECIES"
	ErrTooManySpecies = "TOO_MANY_SPECIES"
	ErrMergeRequired  = "MERGE_REQ"

	ErrCreateFailed = "CREATE_FAILED"
)

// FieldError is a structured diagnostic produced by validation or commit.
// Fatal errors block a row from being committed; non-fatal ones only put
// the row under watch.
type FieldError struct {
	Code   string      `json:"code"`
	Fields []string    `json:"fields,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Fatal  bool        `json:"fatal"`
}

// FieldErrorList is the JSON shape stored in the errors columns of
// import events and rows.
type FieldErrorList []FieldError

func (l FieldErrorList) HasFatal() bool {
	for _, e := range l {
		if e.Fatal {
			return true
		}
	}
	return false
}

func (l FieldErrorList) HasCode(code string) bool {
	for _, e := range l {
		if e.Code == code {
			return true
		}
	}
	return false
}

// WithoutCodes returns a copy of the list with every error whose code is
// in codes removed. Used by merge resolution to strip blocking errors.
func (l FieldErrorList) WithoutCodes(codes ...string) FieldErrorList {
	drop := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		drop[c] = struct{}{}
	}
	out := FieldErrorList{}
	for _, e := range l {
		if _, skip := drop[e.Code]; !skip {
			out = append(out, e)
		}
	}
	return out
}

func (l FieldErrorList) JSON() []byte {
	b, err := json.Marshal(l)
	if err != nil {
		return []byte("[]")
	}
	return b
}

// ParseFieldErrors decodes an errors column. A nil or empty column is an
// empty list, never an error.
func ParseFieldErrors(raw []byte) FieldErrorList {
	if len(raw) == 0 {
		return FieldErrorList{}
	}
	var out FieldErrorList
	if err := json.Unmarshal(raw, &out); err != nil {
		return FieldErrorList{}
	}
	return out
}
