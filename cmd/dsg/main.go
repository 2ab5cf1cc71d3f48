// Command-line tool for inspecting discrete sampling geometry files:
// classify the grid representation, dump the flattened observation table
// and derive summary metadata.
package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/ioos-tools/godsg/pkg/dsg"
	"github.com/ioos-tools/godsg/pkg/ncdf"
	"github.com/ioos-tools/godsg/pkg/urn"
)

func main() {
	app := &cli.App{
		Name:    "dsg",
		Usage:   "inspect padded-grid profile and timeseries files",
		Version: "0.1.0",
		Commands: []*cli.Command{
			{
				Name:      "classify",
				Usage:     "Report the grid representation of a file",
				ArgsUsage: "<file>",
				Action:    classify,
			},
			{
				Name:      "dump",
				Usage:     "Flatten a profile-grid file to CSV on stdout",
				ArgsUsage: "<file>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "keep-empty-cols", Usage: "keep data columns that are missing in every row"},
					&cli.BoolFlag{Name: "keep-empty-rows", Usage: "keep the grid's padding rows"},
				},
				Action: dump,
			},
			{
				Name:      "meta",
				Usage:     "Print per-profile and overall metadata",
				ArgsUsage: "<file>",
				Action:    meta,
			},
			{
				Name:  "urn",
				Usage: "Work with sensor identifiers",
				Subcommands: []*cli.Command{
					{
						Name:      "decode",
						Usage:     "Decode a sensor URN",
						ArgsUsage: "<urn>",
						Action:    urnDecode,
					},
					{
						Name:  "encode",
						Usage: "Build a sensor URN from its parts",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "authority", Required: true, Usage: "naming authority, e.g. a data center"},
							&cli.StringFlag{Name: "station", Required: true, Usage: "station label"},
							&cli.StringFlag{Name: "standard-name", Usage: "CF standard name of the measured quantity"},
							&cli.StringFlag{Name: "name", Usage: "variable name, used when no standard name exists"},
							&cli.StringFlag{Name: "discriminant", Usage: "suffix disambiguating sensors sharing a standard name"},
							&cli.StringFlag{Name: "cell-methods", Usage: "CF cell_methods value, e.g. \"time: mean (interval: PT1H)\""},
							&cli.StringFlag{Name: "vertical-datum", Usage: "vertical reference, e.g. NAVD88"},
							&cli.StringFlag{Name: "bounds", Usage: "bounds variable name"},
						},
						Action: urnEncode,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openArg(c *cli.Context) (*ncdf.File, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit("exactly one file expected", 1)
	}
	return ncdf.Open(c.Args().First())
}

func classify(c *cli.Context) error {
	f, err := openArg(c)
	if err != nil {
		return err
	}
	defer f.Close()
	fmt.Println(dsg.Classify(f))
	return nil
}

func dump(c *cli.Context) error {
	f, err := openArg(c)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := dsg.FlattenOptions{
		DropEmptyColumns: !c.Bool("keep-empty-cols"),
		DropEmptyRows:    !c.Bool("keep-empty-rows"),
	}
	t, err := dsg.Flatten(f, opts)
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	if err := w.Write(t.Columns()); err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		row := []string{
			strconv.Itoa(t.Instance[i]),
			t.Time[i].Format("2006-01-02T15:04:05Z"),
			cell(t.Longitude, i),
			cell(t.Latitude, i),
			cell(t.Vertical, i),
			cell(t.Distance, i),
		}
		for _, d := range t.Data {
			row = append(row, cell(d.Column, i))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func cell(c dsg.Column, i int) string {
	if c.Missing[i] {
		return ""
	}
	return strconv.FormatFloat(c.Values[i], 'g', -1, 64)
}

func meta(c *cli.Context) error {
	f, err := openArg(c)
	if err != nil {
		return err
	}
	defer f.Close()

	t, err := dsg.Flatten(f, dsg.DefaultFlattenOptions)
	if err != nil {
		return err
	}
	m := dsg.Summarize(t)

	fmt.Printf("time span : %s .. %s\n", m.MinTime.Format("2006-01-02T15:04:05Z"), m.MaxTime.Format("2006-01-02T15:04:05Z"))
	if m.Geometry != nil {
		b := m.Geometry.Bounds()
		fmt.Printf("extent    : %g,%g .. %g,%g\n", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
	}
	fmt.Printf("profiles  : %d\n", len(m.Profiles))
	for id, p := range m.Profiles {
		fmt.Printf("  %4d  t=%s  lon=%g lat=%g  z=[%g, %g]\n",
			id, p.Time.Format("2006-01-02T15:04:05Z"), p.Longitude, p.Latitude, p.MinZ, p.MaxZ)
	}
	return nil
}

func urnEncode(c *cli.Context) error {
	s := urn.Sensor{
		Authority:     c.String("authority"),
		Label:         c.String("station"),
		StandardName:  c.String("standard-name"),
		Name:          c.String("name"),
		Discriminant:  c.String("discriminant"),
		VerticalDatum: c.String("vertical-datum"),
		Bounds:        c.String("bounds"),
	}
	if cm := c.String("cell-methods"); cm != "" {
		s.CellMethods, s.Intervals = urn.ParseCellMethods(cm)
	}
	u, err := urn.Encode(s)
	if err != nil {
		return err
	}
	fmt.Println(u)
	return nil
}

func urnDecode(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("exactly one URN expected", 1)
	}
	s, err := urn.Decode(c.Args().First())
	if err != nil {
		return err
	}
	fmt.Printf("authority     : %s\n", s.Authority)
	fmt.Printf("station       : %s\n", s.Label)
	fmt.Printf("standard_name : %s\n", s.StandardName)
	if s.Discriminant != "" {
		fmt.Printf("discriminant  : %s\n", s.Discriminant)
	}
	if cm := s.CellMethodsAttribute(); cm != "" {
		fmt.Printf("cell_methods  : %s\n", cm)
	}
	if s.VerticalDatum != "" {
		fmt.Printf("vertical_datum: %s\n", s.VerticalDatum)
	}
	if s.Bounds != "" {
		fmt.Printf("bounds        : %s\n", s.Bounds)
	}
	return nil
}
