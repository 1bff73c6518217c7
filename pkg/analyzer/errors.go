package analyzer

import "fmt"

// EmptyDatasetError is returned when there is nothing to plot.
type EmptyDatasetError struct {
	Mode Mode

	// Tag is the required input type, if the mode filters on one.
	Tag string

	// RecordsSeen is how many records were read before filtering.
	RecordsSeen int
}

func (e *EmptyDatasetError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("no %q records to plot in %s mode (%d records read)", e.Tag, e.Mode, e.RecordsSeen)
	}
	return fmt.Sprintf("no records to plot in %s mode", e.Mode)
}
