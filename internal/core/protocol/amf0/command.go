// If you are AI: This file decodes RTMP command and data message bodies into structured values.

package amf0

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Command is a decoded RTMP command message.
type Command struct {
	Name          string
	TransactionID float64
	// Object is nil when the command object is null.
	Object Object
	Args   Array
}

// DecodeCommand decodes a command body: name, transaction id, command object and arguments.
// Arguments that fail to decode are dropped; a missing or non-string name is an error.
func DecodeCommand(body []byte) (*Command, error) {
	r := bytes.NewReader(body)
	name, err := DecodeString(r)
	if err != nil {
		return nil, fmt.Errorf("command name: %w", err)
	}
	cmd := &Command{Name: name}

	v, err := Decode(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return cmd, nil
		}
		return nil, fmt.Errorf("%s transaction id: %w", name, err)
	}
	if id, ok := v.(float64); ok {
		cmd.TransactionID = id
	}

	if r.Len() == 0 {
		return cmd, nil
	}
	v, err = Decode(r)
	if err != nil {
		return cmd, nil
	}
	if obj, ok := v.(Object); ok {
		cmd.Object = obj
	}

	for r.Len() > 0 {
		v, err := Decode(r)
		if err != nil {
			break
		}
		cmd.Args = append(cmd.Args, v)
	}
	return cmd, nil
}

// StringArg returns argument i as a string, or "" when absent or of another type.
func (c *Command) StringArg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}
	s, _ := c.Args[i].(string)
	return s
}

// BoolArg returns argument i as a bool and whether it was present.
func (c *Command) BoolArg(i int) (bool, bool) {
	if i < 0 || i >= len(c.Args) {
		return false, false
	}
	b, ok := c.Args[i].(bool)
	return b, ok
}

// NumberArg returns argument i as a number and whether it was present.
func (c *Command) NumberArg(i int) (float64, bool) {
	if i < 0 || i >= len(c.Args) {
		return 0, false
	}
	n, ok := c.Args[i].(float64)
	return n, ok
}

// ObjectString returns a string property of the command object.
func (c *Command) ObjectString(key string) string {
	if c.Object == nil {
		return ""
	}
	s, _ := c.Object[key].(string)
	return s
}

// DecodeData decodes a data message body into its handler name and the values that follow.
func DecodeData(body []byte) (string, Array, error) {
	r := bytes.NewReader(body)
	name, err := DecodeString(r)
	if err != nil {
		return "", nil, fmt.Errorf("data name: %w", err)
	}
	var vals Array
	for r.Len() > 0 {
		v, err := Decode(r)
		if err != nil {
			return name, vals, err
		}
		vals = append(vals, v)
	}
	return name, vals, nil
}

// StripFirstString returns body without its leading string value.
// It turns an @setDataFrame body into the onMetaData body that follows it.
func StripFirstString(body []byte) ([]byte, error) {
	r := bytes.NewReader(body)
	if _, err := DecodeString(r); err != nil {
		return nil, err
	}
	return body[len(body)-r.Len():], nil
}
