package tracing

import (
	"log"
	"os"
	"strconv"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// samplerFromEnv reads OTEL_TRACES_SAMPLER and OTEL_TRACES_SAMPLER_ARG.
// Anything unrecognised samples every trace.
func samplerFromEnv(appEnv string) sdktrace.Sampler {
	name := os.Getenv("OTEL_TRACES_SAMPLER")
	switch name {
	case "", "parentbased_always_on":
		if appEnv == "development" {
			return sdktrace.ParentBased(sdktrace.AlwaysSample())
		}
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(1))
	case "always_on":
		return sdktrace.AlwaysSample()
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(samplerRatio(os.Getenv("OTEL_TRACES_SAMPLER_ARG"))))
	default:
		log.Printf("tracing: unsupported sampler=%q, sampling everything", name)
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(1))
	}
}

// samplerRatio parses arg and clamps it to [0, 1]. Bad input means 1.
func samplerRatio(arg string) float64 {
	ratio, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		log.Printf("tracing: invalid sampler arg=%q, using 1.0", arg)
		return 1
	}
	return min(max(ratio, 0), 1)
}
