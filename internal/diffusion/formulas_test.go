package diffusion_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/seralo/diffsim/internal/diffusion"
)

var _ = Describe("StokesEinstein", func() {
	It("computes the coefficient of a 5 nm sphere in water at 293 K", func() {
		d, err := diffusion.StokesEinstein(5e-9, 1.0e-3, 293)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeNumerically("~", 8.58e-11, 0.01e-11))
		Expect(diffusion.Rescale(d, diffusion.Nm2PerUs)).To(BeNumerically("~", 85.8, 0.1))
	})

	It("is positive for any positive inputs", func() {
		for _, dia := range []float64{1e-10, 5e-9, 1e-6} {
			for _, temp := range []float64{273.15, 293, 310} {
				d, err := diffusion.StokesEinstein(dia, diffusion.WaterViscosity20C, temp)
				Expect(err).NotTo(HaveOccurred())
				Expect(d).To(BeNumerically(">", 0))
			}
		}
	})

	It("decreases with diameter and increases with temperature", func() {
		small, _ := diffusion.StokesEinstein(2e-9, 1e-3, 293)
		large, _ := diffusion.StokesEinstein(8e-9, 1e-3, 293)
		Expect(large).To(BeNumerically("<", small))

		cold, _ := diffusion.StokesEinstein(5e-9, 1e-3, 280)
		warm, _ := diffusion.StokesEinstein(5e-9, 1e-3, 320)
		Expect(warm).To(BeNumerically(">", cold))
	})

	DescribeTable("rejects non-positive inputs",
		func(dia, eta, temp float64) {
			_, err := diffusion.StokesEinstein(dia, eta, temp)
			Expect(err).To(MatchError(diffusion.ErrInvalidArgument))
		},
		Entry("zero diameter", 0.0, 1e-3, 293.0),
		Entry("negative diameter", -5e-9, 1e-3, 293.0),
		Entry("zero viscosity", 5e-9, 0.0, 293.0),
		Entry("negative viscosity", 5e-9, -1e-3, 293.0),
		Entry("zero temperature", 5e-9, 1e-3, 0.0),
		Entry("negative temperature", 5e-9, 1e-3, -10.0),
	)
})

var _ = Describe("CoefficientFromSpot", func() {
	It("computes the coefficient from a 0.8 um spot and 1 ms residence", func() {
		d, err := diffusion.CoefficientFromSpot(0.8e-6, 3, 1e-3)
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeNumerically("~", 1.0667e-10, 0.001e-10))
		Expect(diffusion.Rescale(d, diffusion.Um2PerMs)).To(BeNumerically("~", 0.10667, 1e-4))
	})

	It("decreases strictly with residence time", func() {
		fast, _ := diffusion.CoefficientFromSpot(0.8e-6, 3, 0.5e-3)
		slow, _ := diffusion.CoefficientFromSpot(0.8e-6, 3, 2e-3)
		Expect(slow).To(BeNumerically("<", fast))
	})

	It("stays independent of the Stokes-Einstein route", func() {
		fromSpot, _ := diffusion.CoefficientFromSpot(0.8e-6, 3, 1e-3)
		fromSphere, _ := diffusion.StokesEinstein(5e-9, 1e-3, 293)
		Expect(fromSpot).NotTo(BeNumerically("~", fromSphere, 1e-12))
	})

	DescribeTable("rejects non-positive inputs",
		func(s float64, dims int, tau float64) {
			_, err := diffusion.CoefficientFromSpot(s, dims, tau)
			Expect(err).To(MatchError(diffusion.ErrInvalidArgument))
		},
		Entry("zero spot", 0.0, 3, 1e-3),
		Entry("negative spot", -0.8e-6, 3, 1e-3),
		Entry("zero dims", 0.8e-6, 0, 1e-3),
		Entry("negative dims", 0.8e-6, -1, 1e-3),
		Entry("zero tau", 0.8e-6, 3, 0.0),
		Entry("negative tau", 0.8e-6, 3, -1e-3),
	)
})

var _ = Describe("Sigma", func() {
	It("gives 80 um after 10 s at the spot-derived coefficient", func() {
		d, _ := diffusion.CoefficientFromSpot(0.8e-6, 3, 1e-3)
		sigma, err := diffusion.Sigma(d, 3, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(sigma).To(BeNumerically("~", 80e-6, 0.01e-6))
	})

	It("is zero for zero coefficient or zero time", func() {
		sigma, err := diffusion.Sigma(0, 3, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(sigma).To(BeZero())

		sigma, err = diffusion.Sigma(1e-10, 3, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(sigma).To(BeZero())
	})

	It("grows monotonically in coefficient, dimensions and time", func() {
		base, _ := diffusion.Sigma(1e-10, 1, 1)
		moreD, _ := diffusion.Sigma(2e-10, 1, 1)
		moreN, _ := diffusion.Sigma(1e-10, 3, 1)
		moreT, _ := diffusion.Sigma(1e-10, 1, 4)
		Expect(moreD).To(BeNumerically(">", base))
		Expect(moreN).To(BeNumerically(">", base))
		Expect(moreT).To(BeNumerically(">", base))
	})

	It("scales with the square root of time", func() {
		s1, _ := diffusion.Sigma(1e-10, 3, 1)
		s4, _ := diffusion.Sigma(1e-10, 3, 4)
		Expect(s4).To(BeNumerically("~", 2*s1, 1e-12))
	})

	It("agrees with SigmaStep in one dimension", func() {
		s, _ := diffusion.Sigma(3e-11, 1, 5e-6)
		Expect(diffusion.SigmaStep(3e-11, 5e-6)).To(Equal(s))
	})

	DescribeTable("rejects invalid inputs",
		func(d float64, dims int, t float64) {
			_, err := diffusion.Sigma(d, dims, t)
			Expect(err).To(MatchError(diffusion.ErrInvalidArgument))
		},
		Entry("zero dims", 1e-10, 0, 1.0),
		Entry("negative dims", 1e-10, -3, 1.0),
		Entry("negative coefficient", -1e-10, 3, 1.0),
		Entry("negative time", 1e-10, 3, -1.0),
	)
})

var _ = Describe("Time", func() {
	It("gives 15.6 s to diffuse 100 um at the spot-derived coefficient", func() {
		d, _ := diffusion.CoefficientFromSpot(0.8e-6, 3, 1e-3)
		t, err := diffusion.Time(1e-4, d, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(t).To(BeNumerically("~", 15.625, 0.001))
	})

	It("round-trips with Sigma", func() {
		const d, dims = 8.58e-11, 3
		for _, t := range []float64{1e-3, 1.0, 60.0} {
			sigma, err := diffusion.Sigma(d, dims, t)
			Expect(err).NotTo(HaveOccurred())
			back, err := diffusion.Time(sigma, d, dims)
			Expect(err).NotTo(HaveOccurred())
			Expect(back).To(BeNumerically("~", t, t*1e-12))
		}
	})

	It("grows quadratically in distance", func() {
		t1, _ := diffusion.Time(1e-5, 1e-10, 3)
		t2, _ := diffusion.Time(2e-5, 1e-10, 3)
		Expect(t2).To(BeNumerically("~", 4*t1, 4*t1*1e-12))
	})

	DescribeTable("rejects invalid inputs",
		func(x, d float64, dims int) {
			_, err := diffusion.Time(x, d, dims)
			Expect(err).To(MatchError(diffusion.ErrInvalidArgument))
		},
		Entry("zero coefficient", 1e-4, 0.0, 3),
		Entry("negative coefficient", 1e-4, -1e-10, 3),
		Entry("zero dims", 1e-4, 1e-10, 0),
		Entry("negative distance", -1e-4, 1e-10, 3),
	)
})

var _ = Describe("Units", func() {
	It("rescales and returns to SI exactly for powers of ten", func() {
		for _, u := range diffusion.Units {
			scaled := diffusion.Rescale(8.58e-11, u)
			Expect(diffusion.ToSI(scaled, u)).To(BeNumerically("~", 8.58e-11, 8.58e-11*1e-12))
		}
	})

	It("maps the usual display units", func() {
		Expect(diffusion.Rescale(1e-10, diffusion.Um2PerS)).To(BeNumerically("~", 100, 1e-9))
		Expect(diffusion.Rescale(1e-10, diffusion.Nm2PerUs)).To(BeNumerically("~", 100, 1e-9))
		Expect(diffusion.Rescale(1e-10, diffusion.Um2PerMs)).To(BeNumerically("~", 0.1, 1e-12))
	})

	It("parses unit names", func() {
		u, err := diffusion.ParseUnit("nm2/us")
		Expect(err).NotTo(HaveOccurred())
		Expect(u).To(Equal(diffusion.Nm2PerUs))

		_, err = diffusion.ParseUnit("furlong2/fortnight")
		Expect(err).To(MatchError(diffusion.ErrInvalidArgument))
	})
})

var _ = Describe("Constants", func() {
	It("keeps Boltzmann at the CODATA value", func() {
		Expect(diffusion.Boltzmann).To(Equal(1.380649e-23))
	})

	It("keeps kB*T/(3*pi*eta*d) dimensionally sane at defaults", func() {
		d, err := diffusion.StokesEinstein(5e-9, diffusion.WaterViscosity20C, diffusion.RoomTempK)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.Log10(d)).To(BeNumerically("~", -10, 1))
	})
})
