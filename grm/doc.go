// Package grm builds genomic relationship matrices (GRM) from marker
// genotype dosages.
//
// 🚀 What is a GRM?
//
//	A GRM quantifies realized genetic relatedness between individuals from
//	their marker genotypes. Its diagonal approximates 1 + F (F = inbreeding
//	coefficient) and its off-diagonal entries estimate twice the kinship.
//
// ✨ Methods:
//   - VanRaden1: G = ZZᵀ / (ploidy·Σ p_k(1−p_k)), Z = M − ploidy·p
//   - VanRaden2: every locus standardized by its own heterozygosity
//   - Yang:      per-locus outer products z_k z_kᵀ / het_k, averaged over loci
//
// Guarantees:
//   - The result is n×n and exactly symmetric (upper triangle mirrored).
//   - No NaN/Inf is ever produced, even for loci fixed across the whole
//     population: heterozygosity is floored at an epsilon before inversion.
//   - Results are bit-identical for every worker count; each cell is summed
//     by exactly one goroutine in fixed marker order.
//
// ⚙️ Usage:
//
//	res, err := grm.Compute(genotypes, grm.VanRaden1, grm.WithWorkers(4))
//	if err != nil {
//	  // shape or dosage errors only
//	}
//	fmt.Println(res.Matrix)
//
// Missing calls are coded as NaN and imputed with the marker mean.
//
// Performance:
//
//   - Time:   O(n²·m / workers)
//   - Memory: O(n·m + n²)
package grm
