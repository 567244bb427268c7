package tm1650

import (
	"log"
	"os"
	"time"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

func ExampleNew() {
	host.Init()
	d, err := New(gpioreg.ByName("23"), gpioreg.ByName("24"), nil)
	if err != nil {
		log.Fatal(err)
	}
	if len(os.Args) == 1 {
		d.Print("HI.")
	} else {
		d.Print(os.Args[1])
	}
	if err := d.Display(); err != nil {
		log.Fatal(err)
	}
}

func ExampleDev_SetWriter() {
	host.Init()
	d, err := New(gpioreg.ByName("23"), gpioreg.ByName("24"), nil)
	if err != nil {
		log.Fatal(err)
	}
	d.SetWriter(func(f *Frame) {
		f.PrintTime("15.04", time.Now())
	})
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for range t.C {
		d.Update()
	}
}

func ExampleNewI2C() {
	host.Init()
	b, err := i2creg.Open("")
	if err != nil {
		log.Fatal(err)
	}
	defer b.Close()
	d, err := NewI2C(b, nil)
	if err != nil {
		log.Fatal(err)
	}
	keys := NewKeypad(d)
	keys.Add("up", KeyCode(0, 0), func(k *Key, pressed bool) {
		if pressed {
			log.Printf("%s pressed", k.Name)
		}
	})
	for {
		keys.Scan()
		time.Sleep(50 * time.Millisecond)
	}
}
