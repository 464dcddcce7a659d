package logging

import (
	"fmt"
	"time"
)

func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Strings(key string, values []string) Field {
	return Field{Key: key, Value: values}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Domain fields shared by the trace engine, the manager and the CLI

func Component(name string) Field {
	return String("component", name)
}

func Region(r string) Field {
	return String("region", r)
}

func Period(p int) Field {
	return Int("period", p)
}

func Tech(name string) Field {
	return String("tech", name)
}

func Commodity(name string) Field {
	return String("commodity", name)
}

// Arc renders an (input, tech, output) triple the way operators read it in reports.
func Arc(input, tech, output string) Field {
	return String("arc", fmt.Sprintf("%s -[%s]-> %s", input, tech, output))
}

func Pass(n int) Field {
	return Int("pass", n)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
