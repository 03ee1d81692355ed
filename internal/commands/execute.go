package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add     func(AddArgs) (Result, error)
	Done    func(DoneArgs) (Result, error)
	Days    func(DaysArgs) (Result, error)
	Reset   func() (Result, error)
	Records func() (Result, error)
	Notes   func(NotesArgs) (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeDone:
		if handlers.Done == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Done(*cmd.Done)
	case TypeDays:
		if handlers.Days == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Days(*cmd.Days)
	case TypeReset:
		if handlers.Reset == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Reset()
	case TypeRecords:
		if handlers.Records == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Records()
	case TypeNotes:
		if handlers.Notes == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Notes(*cmd.Notes)
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}
