package zkteco

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateIP(t *testing.T) {
	assert.NoError(t, ValidateIP("192.168.1.201"))
	assert.Error(t, ValidateIP("192.168.1"))
	assert.Error(t, ValidateIP("192.168.1.256"))
	assert.Error(t, ValidateIP("not.an.ip.address"))
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort(4370))
	assert.Error(t, ValidatePort(0))
	assert.Error(t, ValidatePort(70000))
}

func TestValidateConfigDefaultsPort(t *testing.T) {
	assert.NoError(t, ValidateConfig(DeviceConfig{IP: "10.0.0.5"}))
}
