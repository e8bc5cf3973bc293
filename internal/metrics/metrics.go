// Package metrics holds the Prometheus collectors exported by the service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "download"

// register adds c to reg and returns the collector already registered under
// the same descriptor when there is one.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("existing %s collector has unexpected type %T", name, already.ExistingCollector)
		}
		var zero T
		return zero, fmt.Errorf("register %s collector: %w", name, err)
	}
	return c, nil
}

func orDefaults(reg prometheus.Registerer, namespace string) (prometheus.Registerer, string) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = defaultNamespace
	}
	return reg, namespace
}
