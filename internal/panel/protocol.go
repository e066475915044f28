// Package panel implements the detail panel: the message protocol spoken between the controller and the panel UI, the
// in-process bridge carrying it, the controller itself and the UI-side issue mirror.
package panel

import (
	"encoding/json"
	"errors"
	"fmt"

	githubpkg "github.com/cchalm/ghissues/internal/github"
)

// Command discriminants. Every message is a JSON object whose "command" field names its shape
const (
	CommandLoadIssue    = "loadIssue"
	CommandCommentAdded = "commentAdded"
	CommandIssueUpdated = "issueUpdated"
	CommandError        = "error"

	CommandAddComment  = "addComment"
	CommandUpdateIssue = "updateIssue"
	CommandCloseIssue  = "closeIssue"
	CommandReopenIssue = "reopenIssue"
	CommandAddLabel    = "addLabel"
	CommandRemoveLabel = "removeLabel"
)

// ErrUnknownCommand is returned when decoding a message whose command is not part of the protocol. Receivers drop
// such messages
var ErrUnknownCommand = errors.New("unknown command")

// Push is a message from the controller to the panel. The set of implementations is closed
type Push interface {
	Command() string
	push()
}

type LoadIssue struct {
	Issue githubpkg.IssueWithComments `json:"issue"`
}

type CommentAdded struct {
	Comment githubpkg.Comment `json:"comment"`
}

type IssueUpdated struct {
	Issue githubpkg.Issue `json:"issue"`
}

type ErrorMessage struct {
	Message string `json:"message"`
}

func (LoadIssue) Command() string    { return CommandLoadIssue }
func (CommentAdded) Command() string { return CommandCommentAdded }
func (IssueUpdated) Command() string { return CommandIssueUpdated }
func (ErrorMessage) Command() string { return CommandError }

func (LoadIssue) push()    {}
func (CommentAdded) push() {}
func (IssueUpdated) push() {}
func (ErrorMessage) push() {}

// Request is a message from the panel to the controller. The set of implementations is closed
type Request interface {
	Command() string
	request()
}

type AddComment struct {
	IssueNumber int    `json:"issueNumber"`
	Body        string `json:"body"`
}

// Updates is a partial title/body edit. Absent fields stay absent all the way to GitHub
type Updates struct {
	Title *string `json:"title,omitempty"`
	Body  *string `json:"body,omitempty"`
}

type UpdateIssue struct {
	IssueNumber int     `json:"issueNumber"`
	Updates     Updates `json:"updates"`
}

type CloseIssue struct {
	IssueNumber int `json:"issueNumber"`
}

type ReopenIssue struct {
	IssueNumber int `json:"issueNumber"`
}

type AddLabel struct {
	IssueNumber int    `json:"issueNumber"`
	Label       string `json:"label"`
}

type RemoveLabel struct {
	IssueNumber int    `json:"issueNumber"`
	Label       string `json:"label"`
}

func (AddComment) Command() string  { return CommandAddComment }
func (UpdateIssue) Command() string { return CommandUpdateIssue }
func (CloseIssue) Command() string  { return CommandCloseIssue }
func (ReopenIssue) Command() string { return CommandReopenIssue }
func (AddLabel) Command() string    { return CommandAddLabel }
func (RemoveLabel) Command() string { return CommandRemoveLabel }

func (AddComment) request()  {}
func (UpdateIssue) request() {}
func (CloseIssue) request()  {}
func (ReopenIssue) request() {}
func (AddLabel) request()    {}
func (RemoveLabel) request() {}

type envelope struct {
	Command string `json:"command"`
}

// EncodePush serialises a push with its command discriminant
func EncodePush(p Push) ([]byte, error) {
	switch m := p.(type) {
	case LoadIssue:
		return json.Marshal(struct {
			Command string `json:"command"`
			LoadIssue
		}{m.Command(), m})
	case CommentAdded:
		return json.Marshal(struct {
			Command string `json:"command"`
			CommentAdded
		}{m.Command(), m})
	case IssueUpdated:
		return json.Marshal(struct {
			Command string `json:"command"`
			IssueUpdated
		}{m.Command(), m})
	case ErrorMessage:
		return json.Marshal(struct {
			Command string `json:"command"`
			ErrorMessage
		}{m.Command(), m})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, p)
	}
}

// EncodeRequest serialises a request with its command discriminant
func EncodeRequest(r Request) ([]byte, error) {
	switch m := r.(type) {
	case AddComment:
		return json.Marshal(struct {
			Command string `json:"command"`
			AddComment
		}{m.Command(), m})
	case UpdateIssue:
		return json.Marshal(struct {
			Command string `json:"command"`
			UpdateIssue
		}{m.Command(), m})
	case CloseIssue:
		return json.Marshal(struct {
			Command string `json:"command"`
			CloseIssue
		}{m.Command(), m})
	case ReopenIssue:
		return json.Marshal(struct {
			Command string `json:"command"`
			ReopenIssue
		}{m.Command(), m})
	case AddLabel:
		return json.Marshal(struct {
			Command string `json:"command"`
			AddLabel
		}{m.Command(), m})
	case RemoveLabel:
		return json.Marshal(struct {
			Command string `json:"command"`
			RemoveLabel
		}{m.Command(), m})
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownCommand, r)
	}
}

func readCommand(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("failed to decode message: %w", err)
	}
	return env.Command, nil
}

func decodeRequest[T Request](data []byte) (Request, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", m.Command(), err)
	}
	return m, nil
}

func decodePush[T Push](data []byte) (Push, error) {
	var m T
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", m.Command(), err)
	}
	return m, nil
}

// DecodeRequest parses a message sent by the panel. Unknown commands yield ErrUnknownCommand
func DecodeRequest(data []byte) (Request, error) {
	command, err := readCommand(data)
	if err != nil {
		return nil, err
	}

	switch command {
	case CommandAddComment:
		return decodeRequest[AddComment](data)
	case CommandUpdateIssue:
		return decodeRequest[UpdateIssue](data)
	case CommandCloseIssue:
		return decodeRequest[CloseIssue](data)
	case CommandReopenIssue:
		return decodeRequest[ReopenIssue](data)
	case CommandAddLabel:
		return decodeRequest[AddLabel](data)
	case CommandRemoveLabel:
		return decodeRequest[RemoveLabel](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

// DecodePush parses a message sent by the controller. Unknown commands yield ErrUnknownCommand
func DecodePush(data []byte) (Push, error) {
	command, err := readCommand(data)
	if err != nil {
		return nil, err
	}

	switch command {
	case CommandLoadIssue:
		return decodePush[LoadIssue](data)
	case CommandCommentAdded:
		return decodePush[CommentAdded](data)
	case CommandIssueUpdated:
		return decodePush[IssueUpdated](data)
	case CommandError:
		return decodePush[ErrorMessage](data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}
