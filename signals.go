package luhn

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for scanning events.
var (
	SignalPipelineStart    = capitan.NewSignal("luhn.pipeline.start", "Pipeline run beginning")
	SignalPipelineComplete = capitan.NewSignal("luhn.pipeline.complete", "Pipeline run finished")
	SignalLineFailed       = capitan.NewSignal("luhn.line.failed", "Line could not be processed")
	SignalRedactComplete   = capitan.NewSignal("luhn.redact.complete", "Struct redaction finished")
)

// Keys for typed event data.
var (
	KeyMode          = capitan.NewStringKey("mode")
	KeyTypeName      = capitan.NewStringKey("type_name")
	KeyWorkers       = capitan.NewIntKey("workers")
	KeyQueueCapacity = capitan.NewIntKey("queue_capacity")
	KeyLines         = capitan.NewIntKey("lines")
	KeyLine          = capitan.NewIntKey("line")
	KeyMaskedDigits  = capitan.NewIntKey("masked_digits")
	KeyFields        = capitan.NewIntKey("fields")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
)

// emitPipelineStart emits an event when a run begins.
func emitPipelineStart(ctx context.Context, mode Mode, workers, queueCapacity int) {
	capitan.Emit(ctx, SignalPipelineStart,
		KeyMode.Field(string(mode)),
		KeyWorkers.Field(workers),
		KeyQueueCapacity.Field(queueCapacity),
	)
}

// emitPipelineComplete emits an event when a run ends.
func emitPipelineComplete(ctx context.Context, mode Mode, lines, masked int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyMode.Field(string(mode)),
		KeyLines.Field(lines),
		KeyMaskedDigits.Field(masked),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalPipelineComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalPipelineComplete, fields...)
	}
}

// emitLineFailed emits an event for a line that stopped the run.
func emitLineFailed(ctx context.Context, line int, err error) {
	capitan.Error(ctx, SignalLineFailed,
		KeyLine.Field(line),
		KeyError.Field(err),
	)
}

// emitRedactComplete emits an event when a struct has been redacted.
func emitRedactComplete(ctx context.Context, typeName string, fields, masked int, duration time.Duration, err error) {
	data := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyFields.Field(fields),
		KeyMaskedDigits.Field(masked),
		KeyDuration.Field(duration),
	}
	if err != nil {
		data = append(data, KeyError.Field(err))
		capitan.Error(ctx, SignalRedactComplete, data...)
	} else {
		capitan.Emit(ctx, SignalRedactComplete, data...)
	}
}
