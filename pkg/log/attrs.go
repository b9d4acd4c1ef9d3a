package log

import "log/slog"

func FlowID[T ~string](id T) slog.Attr {
	return slog.String("flow_id", string(id))
}

func StepID[T ~string](id T) slog.Attr {
	return slog.String("step_id", string(id))
}

func Domain[T ~string](domain T) slog.Attr {
	return slog.String("domain", string(domain))
}

func Status[T ~string](status T) slog.Attr {
	return slog.String("status", string(status))
}

func Version(v int) slog.Attr {
	return slog.Int("version", v)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}
