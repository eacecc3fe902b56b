package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Workspace/configuration error (no .refcart directory)
	ExitDataError   = 3 // Data error (empty or unparseable seed input)
)
