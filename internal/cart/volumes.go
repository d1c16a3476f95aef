package cart

import "github.com/tournevent/melhorenvio/pkg/melhorenvio"

// ExtractVolumes builds the payload volumes from the packages quoted for
// service. Correios ships a single package, so only the first volume is
// kept and serialized as an object. No matching quotation yields no volumes.
func ExtractVolumes(results []melhorenvio.QuotationResult, service int) melhorenvio.Volumes {
	var volumes []melhorenvio.Volume
	for _, r := range results {
		if r.ID != service {
			continue
		}
		for _, pkg := range r.Packages {
			volumes = append(volumes, melhorenvio.Volume{
				Height: pkg.Dimensions.Height,
				Width:  pkg.Dimensions.Width,
				Length: pkg.Dimensions.Length,
				Weight: pkg.Weight,
			})
		}
	}

	if melhorenvio.Classify(service) == melhorenvio.CarrierCorreios && len(volumes) > 0 {
		return melhorenvio.SingleVolume(volumes[0])
	}
	return melhorenvio.VolumeList(volumes...)
}
