// SPDX-License-Identifier: MIT

package native

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// Features lists the SIMD extensions the BLAS kernels can use on this CPU,
// in a stable order. Empty on architectures without a report.
func Features() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41 || cpu.X86.HasSSE42, "SSE4")
		add(cpu.X86.HasAVX, "AVX")
		add(cpu.X86.HasAVX2, "AVX2")
		add(cpu.X86.HasFMA, "FMA")
		add(cpu.X86.HasAVX512F, "AVX512F")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "ASIMD")
		add(cpu.ARM64.HasFPHP, "FPHP")
		add(cpu.ARM64.HasSVE, "SVE")
	}

	return out
}
