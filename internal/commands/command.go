package commands

import (
	"fmt"
	"strconv"
	"strings"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeDone    Type = "done"
	TypeDays    Type = "days"
	TypeReset   Type = "reset"
	TypeRecords Type = "records"
	TypeNotes   Type = "notes"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Text string
}

// DoneArgs names a task either by its 1-based position or by text.
type DoneArgs struct {
	Index int
	Text  string
}

type DaysArgs struct {
	Days int
}

type NotesArgs struct {
	Text string
}

type Command struct {
	Type  Type
	Raw   string
	Add   *AddArgs
	Done  *DoneArgs
	Days  *DaysArgs
	Notes *NotesArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	head, rest, _ := strings.Cut(raw, " ")
	head = strings.ToLower(head)
	rest = strings.TrimSpace(rest)

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, rest)
	case TypeDone:
		return parseDone(input, rest)
	case TypeDays:
		return parseDays(input, rest)
	case TypeReset:
		return Command{Type: TypeReset, Raw: input}, nil
	case TypeRecords:
		return Command{Type: TypeRecords, Raw: input}, nil
	case TypeNotes:
		return Command{Type: TypeNotes, Raw: input, Notes: &NotesArgs{Text: rest}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

func parseAdd(raw, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires task text"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Text: rest}}, nil
}

func parseDone(raw, rest string) (Command, error) {
	if rest == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "done requires a task number or text"}
	}
	if n, err := strconv.Atoi(rest); err == nil {
		if n <= 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "task numbers start at 1"}
		}
		return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Index: n}}, nil
	}
	return Command{Type: TypeDone, Raw: raw, Done: &DoneArgs{Text: rest}}, nil
}

func parseDays(raw, rest string) (Command, error) {
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "days requires a positive number"}
	}
	return Command{Type: TypeDays, Raw: raw, Days: &DaysArgs{Days: n}}, nil
}
