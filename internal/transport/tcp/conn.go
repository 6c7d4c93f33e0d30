package tcp

import (
	"bufio"
	"io"
	"net"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/vovakirdan/netchat-server/internal/core"
)

// The wire carries UTF-16 little-endian text, one newline-terminated
// line per message. The decoder honors a leading BOM if the peer emits
// one; the encoder never writes a BOM so every line stays symmetric.
var (
	wireDecoding = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	wireEncoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

const maxLineBytes = 64 * 1024

type lineConn struct {
	conn    net.Conn
	scanner *bufio.Scanner
	writer  *bufio.Writer
}

// NewLineConn wraps a stream socket into the line channel the core
// works with. The returned conn assumes one concurrent reader and one
// concurrent writer, which is exactly what a session guarantees.
func NewLineConn(conn net.Conn) core.LineConn {
	scanner := bufio.NewScanner(transform.NewReader(conn, wireDecoding.NewDecoder()))
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)

	return &lineConn{
		conn:    conn,
		scanner: scanner,
		writer:  bufio.NewWriter(transform.NewWriter(conn, wireEncoding.NewEncoder())),
	}
}

func (c *lineConn) ReadLine() (string, error) {
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return c.scanner.Text(), nil
}

func (c *lineConn) WriteLine(line string) error {
	if _, err := c.writer.WriteString(line); err != nil {
		return err
	}
	if err := c.writer.WriteByte('\n'); err != nil {
		return err
	}
	return c.writer.Flush()
}

func (c *lineConn) Close() error {
	return c.conn.Close()
}

func (c *lineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
