// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package scprep

import (
	"bufio"
	"io"
	"os"

	"github.com/kshedden/gonpy"
)

// matrix2array flattens m into a row-major dense array for npy
// output.
func matrix2array(m *CountMatrix) (data []int32, rows, cols int) {
	rows, cols = m.Cells(), m.Genes()
	data = make([]int32, rows*cols)
	m.csr.DoNonZero(func(i, j int, v float64) {
		data[i*cols+j] = int32(v)
	})
	return
}

// writeNumpy saves m as a 2-D int32 .npy file.
func writeNumpy(path string, m *CountMatrix) error {
	output, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0777)
	if err != nil {
		return err
	}
	defer output.Close()
	bufw := bufio.NewWriter(output)
	npw, err := gonpy.NewWriter(nopCloser{bufw})
	if err != nil {
		return err
	}
	data, rows, cols := matrix2array(m)
	npw.Shape = []int{rows, cols}
	err = npw.WriteInt32(data)
	if err != nil {
		return err
	}
	err = bufw.Flush()
	if err != nil {
		return err
	}
	return output.Close()
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
