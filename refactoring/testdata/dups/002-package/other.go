package main

import "fmt"

func volume(w, h, d int) int {
	b := w * h
	fmt.Println(b)
	return b * d
}
