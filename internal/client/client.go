// Package client implements the interactive console client: a thin
// adapter pumping lines between the terminal and the server. The "->"
// convenience syntax is expanded here, before transmission; the server
// only ever sees wire-form private lines from this client.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/netchat-server/internal/core"
	"github.com/vovakirdan/netchat-server/internal/proto"
	"github.com/vovakirdan/netchat-server/internal/transport/tcp"
)

// Client drives one interactive chat session from a terminal.
type Client struct {
	addr string
	in   *bufio.Scanner
	out  io.Writer
	log  *zerolog.Logger
}

// New builds a client reading user input from in and printing to out.
func New(addr string, in io.Reader, out io.Writer, logger *zerolog.Logger) *Client {
	return &Client{
		addr: addr,
		in:   bufio.NewScanner(in),
		out:  out,
		log:  logger,
	}
}

// Run connects (asking to retry on failure), negotiates a username, and
// then pumps lines both ways until the server drops the connection or
// the input ends.
func (c *Client) Run(ctx context.Context) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}

	lc := tcp.NewLineConn(conn)
	defer lc.Close()

	stop := context.AfterFunc(ctx, func() {
		lc.Close()
	})
	defer stop()

	if err := c.negotiate(lc); err != nil {
		return err
	}

	// The one-time active users line follows the acceptance.
	users, err := lc.ReadLine()
	if err != nil {
		return fmt.Errorf("read user list: %w", err)
	}
	fmt.Fprintln(c.out, users)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			line, err := lc.ReadLine()
			if err != nil {
				if ctx.Err() == nil {
					fmt.Fprintln(c.out, "Соединение потеряно.")
				}
				return
			}
			fmt.Fprintln(c.out, line)
		}
	}()

	for c.in.Scan() {
		for _, wire := range ExpandDirected(c.in.Text()) {
			if err := lc.WriteLine(wire); err != nil {
				<-done
				return nil
			}
		}
	}

	lc.Close()
	<-done
	return c.in.Err()
}

// dial connects to the server, prompting to retry after each failure
// the way the reference console client does.
func (c *Client) dial() (net.Conn, error) {
	for {
		conn, err := net.Dial("tcp", c.addr)
		if err == nil {
			return conn, nil
		}
		c.log.Debug().Err(err).Str("addr", c.addr).Msg("dial failed")

		fmt.Fprintln(c.out, "Не удалось подключиться. Попробовать снова? (Y/N)")
		if !c.in.Scan() {
			return nil, err
		}
		if strings.ToUpper(strings.TrimSpace(c.in.Text())) != "Y" {
			return nil, err
		}
	}
}

// negotiate prompts for usernames until the server accepts one.
func (c *Client) negotiate(lc core.LineConn) error {
	for {
		fmt.Fprintln(c.out, "Введите имя пользователя:")
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return err
			}
			return errors.New("input closed during handshake")
		}
		if err := lc.WriteLine(c.in.Text()); err != nil {
			return err
		}

		resp, err := lc.ReadLine()
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, resp)
		if resp == proto.MsgNameAccepted {
			return nil
		}
	}
}

// ExpandDirected rewrites the "->t1,t2:body" convenience form into one
// wire-form private line per target, with targets and body trimmed.
// Every other line passes through unchanged.
func ExpandDirected(line string) []string {
	rest, ok := strings.CutPrefix(line, proto.DirectedMarker)
	if !ok {
		return []string{line}
	}
	rawTargets, body, found := strings.Cut(rest, ":")
	if !found {
		return []string{line}
	}

	body = strings.TrimSpace(body)
	var out []string
	for _, t := range strings.Split(rawTargets, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, proto.FormatPrivate(t, body))
		}
	}
	if len(out) == 0 {
		return []string{line}
	}
	return out
}
