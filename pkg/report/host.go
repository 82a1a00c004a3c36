package report

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
)

// HostInfo identifies the machine a live read was taken on
type HostInfo struct {
	Hostname        string `json:"hostname"`
	OS              string `json:"os"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty"`
	Architecture    string `json:"architecture"`
}

func (h *HostInfo) String() string {
	if h == nil {
		return ""
	}
	s := fmt.Sprintf("%s (%s/%s", h.Hostname, h.OS, h.Architecture)
	if h.Platform != "" {
		s += ", " + h.Platform
		if h.PlatformVersion != "" {
			s += " " + h.PlatformVersion
		}
	}
	return s + ")"
}

// CollectHost gathers host information with gopsutil
func CollectHost(ctx context.Context) (*HostInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get host info: %w", err)
	}

	arch := info.KernelArch
	if arch == "" {
		arch = runtime.GOARCH
	}

	return &HostInfo{
		Hostname:        info.Hostname,
		OS:              info.OS,
		Platform:        info.Platform,
		PlatformVersion: info.PlatformVersion,
		KernelVersion:   info.KernelVersion,
		Architecture:    arch,
	}, nil
}
