package player

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"
)

// Panel is an SSD1306 attached over I²C.
type Panel struct {
	*ssd1306.Dev
	bus i2c.BusCloser
}

// OpenSSD1306 initialises the host drivers and opens a w by h panel on the
// named I²C bus, or the first bus if name is empty.
func OpenSSD1306(name string, w, h int) (*Panel, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}

	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.Opts{W: w, H: h})
	if err != nil {
		bus.Close()
		return nil, err
	}

	return &Panel{
		Dev: dev,
		bus: bus,
	}, nil
}

// Close blanks the panel and releases the bus.
func (p *Panel) Close() error {
	if err := p.Halt(); err != nil {
		p.bus.Close()
		return err
	}
	return p.bus.Close()
}
