package obs

import (
	"io"
	"os"
)

func zapWriter() io.Writer { return os.Stdout }
