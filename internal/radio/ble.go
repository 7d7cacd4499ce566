package radio

import (
	"tinygo.org/x/bluetooth"
)

// bleAdapter adapts a tinygo bluetooth adapter to Adapter.
type bleAdapter struct {
	adapter *bluetooth.Adapter
}

func defaultAdapter() Adapter {
	return &bleAdapter{adapter: bluetooth.DefaultAdapter}
}

func (b *bleAdapter) Enable() error {
	return b.adapter.Enable()
}

func (b *bleAdapter) Scan(fn func(Advertisement)) error {
	return b.adapter.Scan(func(_ *bluetooth.Adapter, result bluetooth.ScanResult) {
		adv := Advertisement{
			Address: result.Address.String(),
			Name:    result.LocalName(),
			RSSI:    result.RSSI,
		}
		for _, m := range result.ManufacturerData() {
			if adv.ManufacturerData == nil {
				adv.ManufacturerData = make(map[uint16][]byte)
			}
			adv.ManufacturerData[m.CompanyID] = m.Data
		}
		fn(adv)
	})
}

func (b *bleAdapter) StopScan() error {
	return b.adapter.StopScan()
}
