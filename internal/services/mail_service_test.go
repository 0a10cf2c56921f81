package services

import (
	"bufio"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/userauth/internal/config"
)

// fakeSMTP accepts one session and records the DATA payload.
func fakeSMTP(t *testing.T) (addr string, received <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	out := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		reply := func(s string) { _, _ = conn.Write([]byte(s + "\r\n")) }
		reply("220 localhost ESMTP")

		var data strings.Builder
		inData := false
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if line == ".\r\n" {
					inData = false
					out <- data.String()
					reply("250 queued")
					continue
				}
				data.WriteString(line)
				continue
			}
			cmd := strings.ToUpper(strings.TrimSpace(line))
			switch {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				reply("250-localhost")
				reply("250 8BITMIME")
			case strings.HasPrefix(cmd, "MAIL FROM"), strings.HasPrefix(cmd, "RCPT TO"):
				reply("250 OK")
			case cmd == "DATA":
				inData = true
				reply("354 go ahead")
			case cmd == "QUIT":
				reply("221 bye")
				return
			default:
				reply("502 not implemented")
			}
		}
	}()
	return ln.Addr().String(), out
}

func mailConfig(t *testing.T, addr string, timeout time.Duration) config.MailConfig {
	t.Helper()
	host, port, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	return config.MailConfig{Host: host, Port: port, From: "noreply@example.com", Timeout: timeout}
}

func TestSMTPMailerSendsResetLink(t *testing.T) {
	addr, received := fakeSMTP(t)
	mailer := NewSMTPMailer(mailConfig(t, addr, 2*time.Second))

	err := mailer.SendResetLink(context.Background(), "a@x.com", "http://front/auth/reset-password/tok")
	require.NoError(t, err)

	select {
	case msg := <-received:
		assert.Contains(t, msg, "To: a@x.com\r\n")
		assert.Contains(t, msg, "Subject: Password Reset Request\r\n")
		assert.Contains(t, msg, "http://front/auth/reset-password/tok")
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}
}

func TestSMTPMailerDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	mailer := NewSMTPMailer(mailConfig(t, addr, time.Second))
	err = mailer.SendResetLink(context.Background(), "a@x.com", "http://front/x")
	assert.ErrorContains(t, err, "dial SMTP server")
}

func TestSMTPMailerTimesOutOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		time.Sleep(2 * time.Second)
		conn.Close()
	}()

	mailer := NewSMTPMailer(mailConfig(t, ln.Addr().String(), 200*time.Millisecond))

	start := time.Now()
	err = mailer.SendResetLink(context.Background(), "a@x.com", "http://front/x")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 1500*time.Millisecond)
}

func TestBuildMessageHeaderOrder(t *testing.T) {
	msg := string(buildMessage("from@x.com", "to@x.com", "Hi", "body"))
	assert.True(t, strings.HasPrefix(msg, "From: from@x.com\r\nTo: to@x.com\r\nSubject: Hi\r\n"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nbody\r\n"))
}
