package writer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Console 创建控制台输出 writer
func Console() zerolog.ConsoleWriter {
	return ConsoleTo(os.Stdout)
}

// ConsoleTo 创建输出到 out 的控制台 writer
func ConsoleTo(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:         out,
		TimeFormat:  time.DateTime,
		FormatLevel: formatLevel,
	}
}

func formatLevel(i any) string {
	return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
}
