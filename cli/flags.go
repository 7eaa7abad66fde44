package cli

var (
	verbose bool

	// for restore command
	restoreCloseOthers bool
)
