package shapedetect

import (
	"testing"

	"go.viam.com/test"
)

func TestConfigValidateAcceptsProbabilityOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProbabilityThreshold = 1
	test.That(t, cfg.Validate(), test.ShouldBeNil)
}

func TestConfigValidateRejectsProbabilityAboveOne(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProbabilityThreshold = 1.01
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
}

func TestConfigValidateRejectsProbabilityZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProbabilityThreshold = 0
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
}
