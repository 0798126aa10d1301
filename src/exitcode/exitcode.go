package exitcode

const (
	Success      = 0
	UsageError   = 1
	IOError      = 2
	FormatError  = 3
	EmptyDataset = 4
	ExportError  = 5
)
