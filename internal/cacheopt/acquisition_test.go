package cacheopt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcquisitionValue_EI_ZeroStdZeroImprovement(t *testing.T) {
	assert.Equal(t, 0.0, acquisitionValue(EI, 0.5, 0, 0.3))
}

func TestAcquisitionValue_EI_HigherWhenMeanBelowBest(t *testing.T) {
	good := acquisitionValue(EI, 0.2, 0.1, 0.5)
	bad := acquisitionValue(EI, 0.6, 0.1, 0.5)
	assert.Greater(t, good, bad)
}

func TestAcquisitionValue_LCB_NegatedSoHigherIsBetter(t *testing.T) {
	lowUncertainty := acquisitionValue(LCB, 0.3, 0.01, 0.5)
	highUncertainty := acquisitionValue(LCB, 0.3, 1.0, 0.5)
	assert.Greater(t, highUncertainty, lowUncertainty)
}

func TestAcquisitionValue_PI_ZeroStdZero(t *testing.T) {
	assert.Equal(t, 0.0, acquisitionValue(PI, 0.5, 0, 0.3))
}

func TestAcquisitionValue_PI_BoundedZeroOne(t *testing.T) {
	v := acquisitionValue(PI, 0.2, 0.3, 0.5)
	assert.GreaterOrEqual(t, v, 0.0)
	assert.LessOrEqual(t, v, 1.0)
}

func TestAcquisition_String(t *testing.T) {
	assert.Equal(t, "EI", EI.String())
	assert.Equal(t, "LCB", LCB.String())
	assert.Equal(t, "PI", PI.String())
}
