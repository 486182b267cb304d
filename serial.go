// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rdv

import "code.hybscloud.com/atomix"

// Serial is a monotonically increasing channel identifier.
// Each call to NewChan assigns the next serial value.
//
// Serials give Select a total order over the monitors it registers on,
// so the claim order is deterministic regardless of how callers list
// their branches.
type Serial = uint32

// counter is the global monotonic counter for channel serials.
var counter atomix.Uint32

// nextSerial returns the next monotonically increasing serial.
func nextSerial() Serial {
	return counter.Add(1)
}
