package domain

// Code 是一个发行作品的分组主键（规范化后形如 CBIKMV-068、WVR1-001、SLR-12345）。
//
// 同一作品的多个 part（A/B、1/2）共享同一个 Code。
type Code string
