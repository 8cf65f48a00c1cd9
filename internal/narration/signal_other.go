//go:build !unix

package narration

import "os"

func suspend(*os.Process) error { return ErrPauseUnsupported }

func resume(*os.Process) error { return ErrPauseUnsupported }
